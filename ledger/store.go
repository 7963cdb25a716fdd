package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type storeKey struct {
	account   string
	commodity string
}

// Store holds the open lots of every (account, commodity) pair touched
// during an import run. Lots are loaded lazily from a LotSource the
// first time a pair is asked for and memoized for the rest of the run;
// trades then mutate the in-memory copy only. Within a pair, lots are
// kept sorted ascending by acquisition date and dates are unique.
//
// Store is not safe for concurrent use; imports are single-threaded.
type Store struct {
	source   LotSource
	snapshot time.Time
	lots     map[storeKey][]*Lot
}

// StoreOption configures a Store at construction.
type StoreOption func(*Store)

// WithSnapshotDate sets the as-of date passed to the LotSource when a
// pair is first loaded. Without it, lots are loaded as of the current
// time.
func WithSnapshotDate(date time.Time) StoreOption {
	return func(s *Store) {
		s.snapshot = date
	}
}

// NewStore creates an empty Store backed by source.
func NewStore(source LotSource, opts ...StoreOption) *Store {
	s := &Store{
		source: source,
		lots:   make(map[storeKey][]*Lot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SnapshotDate returns the as-of date used for source loads.
func (s *Store) SnapshotDate() time.Time {
	if s.snapshot.IsZero() {
		return time.Now()
	}
	return s.snapshot
}

// SetSnapshotDate changes the as-of date for source loads. It fails
// once any pair has been loaded, since those lots already reflect the
// previous date.
func (s *Store) SetSnapshotDate(date time.Time) error {
	for key := range s.lots {
		return NewSnapshotSealedError(key.account, key.commodity)
	}
	s.snapshot = date
	return nil
}

func (s *Store) load(ctx context.Context, key storeKey) ([]*Lot, error) {
	if lots, ok := s.lots[key]; ok {
		return lots, nil
	}

	var lots []*Lot
	if s.source != nil {
		loaded, err := s.source.Lots(ctx, key.account, key.commodity, s.SnapshotDate())
		if err != nil {
			return nil, fmt.Errorf("loading %s lots in %s: %w", key.commodity, key.account, err)
		}
		lots = loaded
	}

	sort.SliceStable(lots, func(i, j int) bool {
		return lots[i].Acquired.Before(lots[j].Acquired)
	})
	s.lots[key] = lots
	return lots, nil
}

// Lots returns every lot of the pair in acquisition order, loading
// from the source on first access. Zero-quantity lots are included.
func (s *Store) Lots(ctx context.Context, account, commodity string) ([]*Lot, error) {
	return s.load(ctx, storeKey{account: account, commodity: commodity})
}

// Lot returns the lot acquired exactly on the given date, or a
// LotNotFoundError. Dates between existing lots do not round.
func (s *Store) Lot(ctx context.Context, account, commodity string, acquired time.Time) (*Lot, error) {
	lots, err := s.load(ctx, storeKey{account: account, commodity: commodity})
	if err != nil {
		return nil, err
	}

	i := sort.Search(len(lots), func(i int) bool {
		return !lots[i].Acquired.Before(acquired)
	})
	if i < len(lots) && sameDay(lots[i].Acquired, acquired) {
		return lots[i], nil
	}
	return nil, NewLotNotFoundError(account, commodity, acquired)
}

// Add inserts a new lot for the pair, keeping acquisition order. A lot
// on the same date as an existing one is rejected with a
// DuplicateLotError.
func (s *Store) Add(ctx context.Context, account, commodity string, acquired time.Time, quantity, unitCost decimal.Decimal) (*Lot, error) {
	key := storeKey{account: account, commodity: commodity}
	lots, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	i := sort.Search(len(lots), func(i int) bool {
		return !lots[i].Acquired.Before(acquired)
	})
	if i < len(lots) && sameDay(lots[i].Acquired, acquired) {
		return nil, NewDuplicateLotError(account, commodity, acquired)
	}

	lot := &Lot{
		Account:   account,
		Commodity: commodity,
		Acquired:  acquired,
		Quantity:  quantity,
		UnitCost:  unitCost,
	}
	lots = append(lots, nil)
	copy(lots[i+1:], lots[i:])
	lots[i] = lot
	s.lots[key] = lots
	return lot, nil
}

// Reduce takes delta away from the lot acquired on the given date.
// Delta carries the lot's own sign: reducing a 10-share long lot by 8
// leaves 2. Reductions past zero fail with an
// InsufficientLotQuantityError and leave the lot untouched. Fully
// drained lots stay in the store at zero quantity.
func (s *Store) Reduce(ctx context.Context, account, commodity string, acquired time.Time, delta decimal.Decimal) (*Lot, error) {
	lot, err := s.Lot(ctx, account, commodity, acquired)
	if err != nil {
		return nil, err
	}

	if delta.Abs().GreaterThan(lot.Quantity.Abs()) {
		return nil, NewInsufficientLotQuantityError(lot, delta.String())
	}
	if !delta.IsZero() && delta.Sign() != lot.Quantity.Sign() {
		return nil, fmt.Errorf("reduction %s opposes lot %s", delta, lot)
	}

	lot.Quantity = lot.Quantity.Sub(delta)
	return lot, nil
}
