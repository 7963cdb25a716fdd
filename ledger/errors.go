package ledger

import (
	"fmt"
	"time"
)

// LotNotFoundError is returned when an exact-date lot lookup misses.
type LotNotFoundError struct {
	Account   string
	Commodity string
	Acquired  time.Time
}

// NewLotNotFoundError creates a new LotNotFoundError.
func NewLotNotFoundError(account, commodity string, acquired time.Time) *LotNotFoundError {
	return &LotNotFoundError{Account: account, Commodity: commodity, Acquired: acquired}
}

func (e *LotNotFoundError) Error() string {
	return fmt.Sprintf("no %s lot in %s acquired on %s", e.Commodity, e.Account, e.Acquired.Format("2006-01-02"))
}

// DuplicateLotError is returned when adding a lot whose acquisition
// date collides with an existing lot of the same account and commodity.
type DuplicateLotError struct {
	Account   string
	Commodity string
	Acquired  time.Time
}

// NewDuplicateLotError creates a new DuplicateLotError.
func NewDuplicateLotError(account, commodity string, acquired time.Time) *DuplicateLotError {
	return &DuplicateLotError{Account: account, Commodity: commodity, Acquired: acquired}
}

func (e *DuplicateLotError) Error() string {
	return fmt.Sprintf("%s lot in %s acquired on %s already exists", e.Commodity, e.Account, e.Acquired.Format("2006-01-02"))
}

// InsufficientLotQuantityError is returned when a reduction asks for
// more quantity than the lot still holds.
type InsufficientLotQuantityError struct {
	Lot       *Lot
	Requested string
}

// NewInsufficientLotQuantityError creates a new InsufficientLotQuantityError.
func NewInsufficientLotQuantityError(lot *Lot, requested string) *InsufficientLotQuantityError {
	return &InsufficientLotQuantityError{Lot: lot, Requested: requested}
}

func (e *InsufficientLotQuantityError) Error() string {
	return fmt.Sprintf("cannot take %s from lot %s", e.Requested, e.Lot)
}

// InsufficientLotsError is returned when a closing trade exhausts every
// open lot before the requested quantity is covered.
type InsufficientLotsError struct {
	Account   string
	Commodity string
	Remaining string
}

// NewInsufficientLotsError creates a new InsufficientLotsError.
func NewInsufficientLotsError(account, commodity, remaining string) *InsufficientLotsError {
	return &InsufficientLotsError{Account: account, Commodity: commodity, Remaining: remaining}
}

func (e *InsufficientLotsError) Error() string {
	return fmt.Sprintf("open %s lots in %s exhausted with %s still to close", e.Commodity, e.Account, e.Remaining)
}

// SplitNotInitializedError is returned when split processing is asked
// to run without its lot store wiring, or sees a second split leg with
// no pending first leg.
type SplitNotInitializedError struct {
	Commodity string
	Reason    string
}

// NewSplitNotInitializedError creates a new SplitNotInitializedError.
func NewSplitNotInitializedError(commodity, reason string) *SplitNotInitializedError {
	return &SplitNotInitializedError{Commodity: commodity, Reason: reason}
}

func (e *SplitNotInitializedError) Error() string {
	return fmt.Sprintf("split for %s not initialized: %s", e.Commodity, e.Reason)
}

// AmbiguousSplitError is returned when the first split leg arrives
// while the net position is zero, leaving no way to tell the sell leg
// from the buy leg.
type AmbiguousSplitError struct {
	Account   string
	Commodity string
	Date      time.Time
}

// NewAmbiguousSplitError creates a new AmbiguousSplitError.
func NewAmbiguousSplitError(account, commodity string, date time.Time) *AmbiguousSplitError {
	return &AmbiguousSplitError{Account: account, Commodity: commodity, Date: date}
}

func (e *AmbiguousSplitError) Error() string {
	return fmt.Sprintf("cannot classify %s split leg on %s: net %s position in %s is zero", e.Commodity, e.Date.Format("2006-01-02"), e.Commodity, e.Account)
}

// SnapshotSealedError is returned when SetSnapshotDate is called after
// a key has already been loaded with the previous snapshot date.
type SnapshotSealedError struct {
	Account   string
	Commodity string
}

// NewSnapshotSealedError creates a new SnapshotSealedError.
func NewSnapshotSealedError(account, commodity string) *SnapshotSealedError {
	return &SnapshotSealedError{Account: account, Commodity: commodity}
}

func (e *SnapshotSealedError) Error() string {
	return fmt.Sprintf("snapshot date is sealed: %s lots in %s already loaded", e.Commodity, e.Account)
}
