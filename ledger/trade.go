package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hledgerkit/hledgerkit/journal"
)

// TradeAccounts names the accounts a trade posts to. Base is the
// account whose lot sub-accounts hold the commodity; Cash receives the
// proceeds leg; ShortGains and LongGains receive realized gains.
type TradeAccounts struct {
	Base       string
	Cash       string
	ShortGains string
	LongGains  string
}

// LotDelta names an explicit quantity to take from the lot acquired on
// a specific date. Quantity carries the trade's direction: selling 8
// shares out of a long lot is Quantity -8.
type LotDelta struct {
	Quantity decimal.Decimal
	Acquired time.Time
}

// TradeDelta is the quantity side of a trade: either a single
// aggregate quantity matched FIFO, or explicit per-lot quantities.
type TradeDelta struct {
	aggregate decimal.Decimal
	lots      []LotDelta
	specific  bool
}

// Aggregate trades a single signed quantity; closes are matched FIFO.
func Aggregate(quantity decimal.Decimal) TradeDelta {
	return TradeDelta{aggregate: quantity}
}

// SpecificLots closes explicit quantities against explicitly dated lots.
func SpecificLots(lots ...LotDelta) TradeDelta {
	return TradeDelta{lots: lots, specific: true}
}

// Total returns the signed quantity the trade moves.
func (d TradeDelta) Total() decimal.Decimal {
	if !d.specific {
		return d.aggregate
	}
	total := decimal.Zero
	for _, ld := range d.lots {
		total = total.Add(ld.Quantity)
	}
	return total
}

// TradeOption configures a single trade.
type TradeOption func(*tradeConfig)

type tradeConfig struct {
	averageCost bool
}

// WithAverageCost computes gain basis from the weighted average unit
// cost over the commodity's lots instead of each lot's own cost.
func WithAverageCost() TradeOption {
	return func(c *tradeConfig) {
		c.averageCost = true
	}
}

// allocation is one validated draw-down, resolved before any mutation.
type allocation struct {
	lot      *Lot
	quantity decimal.Decimal
}

// Trade matches one buy or sell against the store's lots and returns
// the balanced transaction. Proceeds is the raw signed cash movement
// (negative when buying) and is always posted first. A trade with no
// open lots, or in the same direction as the current position, opens a
// new lot; otherwise it closes against existing lots, FIFO for an
// aggregate delta or by exact date for specific lots, realizing gains
// per consumed lot. The store is not touched until the whole
// allocation has been validated.
func Trade(ctx context.Context, store *Store, accounts TradeAccounts, date time.Time, commodity string, delta TradeDelta, proceeds decimal.Decimal, opts ...TradeOption) (*journal.Transaction, error) {
	var cfg tradeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	lots, err := store.Lots(ctx, accounts.Base, commodity)
	if err != nil {
		return nil, err
	}

	total := delta.Total()
	unitPrice := decimal.Zero
	if !total.IsZero() {
		unitPrice = proceeds.Div(total).Abs()
	}

	builder := newPostingBuilder(accounts, proceeds)

	if !delta.specific && opening(lots, total) {
		lot, err := store.Add(ctx, accounts.Base, commodity, date, total, unitPrice)
		if err != nil {
			return nil, err
		}
		builder.lotLeg(lot, total, unitPrice)
		return &journal.Transaction{Date: date, Postings: builder.build()}, nil
	}

	allocs, err := allocate(ctx, store, accounts.Base, commodity, lots, delta)
	if err != nil {
		return nil, err
	}

	calc := newGainCalculator()
	if cfg.averageCost {
		calc = newAverageCostCalculator(lots)
	}

	for _, a := range allocs {
		// quantity carries the trade's direction; the reduction and
		// the gain carry the lot's.
		consumed := a.quantity.Neg()
		if _, err := store.Reduce(ctx, accounts.Base, commodity, a.lot.Acquired, consumed); err != nil {
			return nil, err
		}
		builder.lotLeg(a.lot, a.quantity, a.lot.UnitCost)
		builder.gain(calc.Gain(a.lot, consumed, unitPrice, date))
	}

	return &journal.Transaction{Date: date, Postings: builder.build()}, nil
}

// opening reports whether a trade of quantity opens a new lot: either
// nothing is held, or the trade runs in the direction of the first lot
// still holding quantity.
func opening(lots []*Lot, quantity decimal.Decimal) bool {
	for _, lot := range lots {
		if !lot.Quantity.IsZero() {
			return lot.Quantity.Sign() == quantity.Sign()
		}
	}
	return true
}

// allocate resolves which lots a closing trade consumes and by how
// much, without mutating anything. FIFO for aggregate deltas; exact
// dated lots otherwise.
func allocate(ctx context.Context, store *Store, account, commodity string, lots []*Lot, delta TradeDelta) ([]allocation, error) {
	if delta.specific {
		allocs := make([]allocation, 0, len(delta.lots))
		for _, ld := range delta.lots {
			lot, err := store.Lot(ctx, account, commodity, ld.Acquired)
			if err != nil {
				return nil, err
			}
			if ld.Quantity.Abs().GreaterThan(lot.Quantity.Abs()) {
				return nil, NewInsufficientLotQuantityError(lot, ld.Quantity.String())
			}
			if !ld.Quantity.IsZero() && ld.Quantity.Sign() == lot.Quantity.Sign() {
				return nil, fmt.Errorf("close of %s runs with lot %s, not against it", ld.Quantity, lot)
			}
			allocs = append(allocs, allocation{lot: lot, quantity: ld.Quantity})
		}
		return allocs, nil
	}

	var allocs []allocation
	remaining := delta.aggregate.Abs()
	sign := decimal.NewFromInt(int64(delta.aggregate.Sign()))
	for _, lot := range lots {
		if remaining.IsZero() {
			break
		}
		if lot.Quantity.IsZero() {
			continue
		}
		consumed := decimal.Min(remaining, lot.Quantity.Abs())
		allocs = append(allocs, allocation{lot: lot, quantity: consumed.Mul(sign)})
		remaining = remaining.Sub(consumed)
	}
	if !remaining.IsZero() {
		return nil, NewInsufficientLotsError(account, commodity, remaining.String())
	}
	return allocs, nil
}
