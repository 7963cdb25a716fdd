package journal

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultTolerance absorbs the rounding that price-converted legs
// accumulate; residuals at or below it count as balanced.
var DefaultTolerance = decimal.NewFromFloat(0.005)

// Weight returns a posting's contribution to its transaction's
// per-commodity balance. A posting with a price annotation weighs in
// the price's commodity: per-unit prices multiply by the quantity,
// total prices carry the sign of the quantity. Without a price the
// posting weighs its own amount.
func Weight(p Posting) (string, decimal.Decimal) {
	if p.Amount == nil {
		return "", decimal.Zero
	}
	if p.Price != nil {
		if p.Price.Type == TotalPrice {
			v := p.Price.Amount.Value
			if p.Amount.Value.IsNegative() {
				v = v.Neg()
			}
			return p.Price.Amount.Commodity, v
		}
		return p.Price.Amount.Commodity, p.Amount.Value.Mul(p.Price.Amount.Value)
	}
	return p.Amount.Commodity, p.Amount.Value
}

// Residual sums posting weights per commodity. A transaction containing
// an elided posting has no residual: hledger infers the missing amount,
// so the transaction cannot be unbalanced.
func Residual(t *Transaction) map[string]decimal.Decimal {
	res := make(map[string]decimal.Decimal)
	for _, p := range t.Postings {
		if p.Amount == nil {
			return map[string]decimal.Decimal{}
		}
		commodity, value := Weight(p)
		res[commodity] = res[commodity].Add(value)
	}
	return res
}

// Balanced reports whether every per-commodity residual of the
// transaction is within tolerance.
func Balanced(t *Transaction, tolerance decimal.Decimal) bool {
	for _, v := range Residual(t) {
		if v.Abs().GreaterThan(tolerance) {
			return false
		}
	}
	return true
}

// Plug appends balancing postings to account when the transaction does
// not balance within tolerance, one per out-of-tolerance commodity in
// stable order. Returns true when any plug was added.
func Plug(t *Transaction, account string, tolerance decimal.Decimal) bool {
	if Balanced(t, tolerance) {
		return false
	}

	res := Residual(t)
	commodities := make([]string, 0, len(res))
	for commodity, v := range res {
		if v.Abs().GreaterThan(tolerance) {
			commodities = append(commodities, commodity)
		}
	}
	sort.Strings(commodities)

	for _, commodity := range commodities {
		var amt Amount
		if commodity == Dollar {
			amt = Dollars(res[commodity].Neg())
		} else {
			amt = Units(commodity, res[commodity].Neg())
		}
		t.Postings = append(t.Postings, Posting{Account: account, Amount: &amt})
	}
	return true
}
