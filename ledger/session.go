package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hledgerkit/hledgerkit/journal"
)

// Accounts names every account a session posts to.
type Accounts struct {
	Base       string
	Cash       string
	ShortGains string
	LongGains  string
	Fees       string
}

// Session owns the lot state of one import run: a Store over a
// LotSource plus a SplitProcessor, sharing one base account. Importers
// feed events through it in date order.
type Session struct {
	store    *Store
	splits   *SplitProcessor
	accounts Accounts
}

// NewSession creates a Session over source for the given accounts.
func NewSession(source LotSource, accounts Accounts, opts ...StoreOption) *Session {
	store := NewStore(source, opts...)
	return &Session{
		store:    store,
		splits:   NewSplitProcessor(store, SplitAccounts{Base: accounts.Base, Fees: accounts.Fees}),
		accounts: accounts,
	}
}

// SetSnapshotDate sets the store's as-of date; it fails once any lots
// have been loaded.
func (s *Session) SetSnapshotDate(date time.Time) error {
	return s.store.SetSnapshotDate(date)
}

// Lots returns the commodity's lots in acquisition order.
func (s *Session) Lots(ctx context.Context, commodity string) ([]*Lot, error) {
	return s.store.Lots(ctx, s.accounts.Base, commodity)
}

// AddLot inserts a lot directly, for acquisitions that are not trades
// against cash (stock grants, transfers in kind).
func (s *Session) AddLot(ctx context.Context, commodity string, acquired time.Time, quantity, unitCost decimal.Decimal) (*Lot, error) {
	return s.store.Add(ctx, s.accounts.Base, commodity, acquired, quantity, unitCost)
}

// Trade matches one buy or sell and returns the balanced transaction.
func (s *Session) Trade(ctx context.Context, date time.Time, commodity string, delta TradeDelta, proceeds decimal.Decimal, opts ...TradeOption) (*journal.Transaction, error) {
	accounts := TradeAccounts{
		Base:       s.accounts.Base,
		Cash:       s.accounts.Cash,
		ShortGains: s.accounts.ShortGains,
		LongGains:  s.accounts.LongGains,
	}
	return Trade(ctx, s.store, accounts, date, commodity, delta, proceeds, opts...)
}

// SplitLeg consumes one leg of a corporate split; the transaction is
// returned on the second leg.
func (s *Session) SplitLeg(ctx context.Context, date time.Time, commodity string, quantity decimal.Decimal) (*journal.Transaction, error) {
	return s.splits.Process(ctx, date, commodity, quantity)
}

// PendingSplit reports whether a split first leg awaits its counterpart.
func (s *Session) PendingSplit(commodity string) bool {
	return s.splits.Pending(commodity)
}
