// Package ledger tracks commodity tax lots held in hledger accounts and
// turns broker trades, realized gains, and corporate splits into
// balanced journal transactions.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Lot is an open position in a commodity: the quantity still held from
// a single acquisition and its per-unit cost basis. Quantity is
// positive for long positions and negative for short positions. A lot
// fully closed by later trades stays in the store with zero quantity.
type Lot struct {
	Account   string
	Commodity string
	Acquired  time.Time
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// SubAccount returns the hledger sub-account holding this lot,
// e.g. "assets:broker:msft:20210301".
func (l *Lot) SubAccount() string {
	return fmt.Sprintf("%s:%s:%s", l.Account, AccountSegment(l.Commodity), l.Acquired.Format("20060102"))
}

func (l *Lot) String() string {
	return fmt.Sprintf("%s %s acquired %s @ %s", l.Quantity, l.Commodity, l.Acquired.Format("2006-01-02"), l.UnitCost)
}

// LotSource loads the open lots of one account and commodity as of a
// date, typically by querying an existing hledger journal.
type LotSource interface {
	Lots(ctx context.Context, account, commodity string, asOf time.Time) ([]*Lot, error)
}

// LotSourceFunc adapts a function to the LotSource interface.
type LotSourceFunc func(ctx context.Context, account, commodity string, asOf time.Time) ([]*Lot, error)

func (f LotSourceFunc) Lots(ctx context.Context, account, commodity string, asOf time.Time) ([]*Lot, error) {
	return f(ctx, account, commodity, asOf)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
