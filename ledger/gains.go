package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// longTermHoldingDays is the boundary between short- and long-term
// realized gains: a lot held exactly this many days is long-term.
const longTermHoldingDays = 365

// Gain is the realized result of drawing quantity down from one lot.
type Gain struct {
	Amount   decimal.Decimal
	LongTerm bool
}

// gainCalculator computes per-lot realized gains for closing trades.
// Basis comes from each lot's own unit cost, or from a fixed weighted
// average when the account is carried at average cost.
type gainCalculator struct {
	averageCost *decimal.Decimal
}

// newGainCalculator returns a per-lot-basis calculator.
func newGainCalculator() *gainCalculator {
	return &gainCalculator{}
}

// newAverageCostCalculator returns a calculator whose basis is the
// weighted average unit cost over lots, computed once up front so that
// later mutations cannot skew it. Falls back to per-lot basis when the
// lots hold no net quantity.
func newAverageCostCalculator(lots []*Lot) *gainCalculator {
	var totalQuantity, totalCost decimal.Decimal
	for _, lot := range lots {
		totalQuantity = totalQuantity.Add(lot.Quantity)
		totalCost = totalCost.Add(lot.Quantity.Mul(lot.UnitCost))
	}
	if totalQuantity.IsZero() {
		return &gainCalculator{}
	}
	avg := totalCost.Div(totalQuantity)
	return &gainCalculator{averageCost: &avg}
}

// Gain returns the realized gain of taking quantity (carrying the
// lot's sign) out of lot at unitPrice on the trade date. A long lot
// sold above basis gains; a short lot covered below basis gains.
func (c *gainCalculator) Gain(lot *Lot, quantity, unitPrice decimal.Decimal, tradeDate time.Time) Gain {
	basis := lot.UnitCost
	if c.averageCost != nil {
		basis = *c.averageCost
	}
	held := tradeDate.Sub(lot.Acquired).Hours() / 24
	return Gain{
		Amount:   quantity.Mul(unitPrice.Sub(basis)),
		LongTerm: held >= longTermHoldingDays,
	}
}
