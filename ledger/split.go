package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hledgerkit/hledgerkit/journal"
)

// SplitAccounts names the accounts split transactions touch: Base
// holds the lot sub-accounts, Fees absorbs any rounding residue.
type SplitAccounts struct {
	Base string
	Fees string
}

// pendingSplit is the state cached between the two legs of a split.
type pendingSplit struct {
	date time.Time
	lots []*Lot
	sell *decimal.Decimal
	buy  *decimal.Decimal
}

// SplitProcessor resolves corporate splits. A split arrives as two
// independent events for the same commodity, a "sell" of the pre-split
// quantity and a "buy" of the post-split quantity, in either order.
// The first leg snapshots the commodity's lots and waits; the second
// leg rescales every snapshot lot in place and emits the transaction.
type SplitProcessor struct {
	store    *Store
	accounts SplitAccounts
	pending  map[string]*pendingSplit
}

// NewSplitProcessor creates a SplitProcessor over store.
func NewSplitProcessor(store *Store, accounts SplitAccounts) *SplitProcessor {
	return &SplitProcessor{
		store:    store,
		accounts: accounts,
		pending:  make(map[string]*pendingSplit),
	}
}

// Process consumes one split leg. The first leg of a commodity returns
// (nil, nil): the transaction is only available once the counterpart
// arrives. The leg is classified as the sell side when its quantity
// runs against the current net position; a zero net position cannot be
// classified and fails with an AmbiguousSplitError.
func (p *SplitProcessor) Process(ctx context.Context, date time.Time, commodity string, quantity decimal.Decimal) (*journal.Transaction, error) {
	if p.store == nil || p.accounts.Base == "" {
		return nil, NewSplitNotInitializedError(commodity, "no lot store or base account configured")
	}

	pend, ok := p.pending[commodity]
	if !ok {
		return nil, p.firstLeg(ctx, date, commodity, quantity)
	}

	if pend.sell == nil {
		pend.sell = &quantity
	} else {
		pend.buy = &quantity
	}
	delete(p.pending, commodity)

	return p.resolve(date, commodity, pend)
}

// Pending reports whether a first split leg for commodity awaits its
// counterpart.
func (p *SplitProcessor) Pending(commodity string) bool {
	_, ok := p.pending[commodity]
	return ok
}

func (p *SplitProcessor) firstLeg(ctx context.Context, date time.Time, commodity string, quantity decimal.Decimal) error {
	lots, err := p.store.Lots(ctx, p.accounts.Base, commodity)
	if err != nil {
		return err
	}

	net := decimal.Zero
	for _, lot := range lots {
		net = net.Add(lot.Quantity)
	}
	if net.IsZero() {
		return NewAmbiguousSplitError(p.accounts.Base, commodity, date)
	}

	pend := &pendingSplit{date: date, lots: lots}
	if quantity.Mul(net).Sign() <= 0 {
		pend.sell = &quantity
	} else {
		pend.buy = &quantity
	}
	p.pending[commodity] = pend
	return nil
}

func (p *SplitProcessor) resolve(date time.Time, commodity string, pend *pendingSplit) (*journal.Transaction, error) {
	if pend.sell == nil || pend.buy == nil || pend.sell.IsZero() || pend.buy.IsZero() {
		return nil, NewSplitNotInitializedError(commodity, "both split legs must carry quantity")
	}
	ratio := pend.sell.Neg().Div(*pend.buy)

	tx := &journal.Transaction{Date: date}
	for _, lot := range pend.lots {
		oldQuantity, oldCost := lot.Quantity, lot.UnitCost
		lot.Quantity = oldQuantity.Div(ratio)
		lot.UnitCost = oldCost.Mul(ratio)

		drawDown := journal.Units(MapSymbol(commodity), oldQuantity.Neg())
		reopen := journal.Units(MapSymbol(commodity), lot.Quantity)
		tx.Postings = append(tx.Postings,
			journal.Posting{Account: lot.SubAccount(), Amount: &drawDown, Price: journal.UnitPriceOf(oldCost)},
			journal.Posting{Account: lot.SubAccount(), Amount: &reopen, Price: journal.UnitPriceOf(lot.UnitCost)},
		)
	}

	journal.Plug(tx, p.accounts.Fees, journal.DefaultTolerance)
	return tx, nil
}
