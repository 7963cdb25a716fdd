// Package journal models hledger journal entries: amounts, prices,
// postings, and transactions, together with the text rendering used
// when writing generated journal files.
package journal

import (
	"github.com/shopspring/decimal"
)

// Dollar is the commodity symbol of the ledger's base currency.
const Dollar = "$"

// Amount is a quantity of a commodity. Precision controls how many
// fractional digits are rendered; the underlying value keeps full
// precision for arithmetic.
type Amount struct {
	Commodity string
	Value     decimal.Decimal
	Precision int32
}

// Dollars returns a cash amount rendered with two fractional digits.
func Dollars(value decimal.Decimal) Amount {
	return Amount{Commodity: Dollar, Value: value, Precision: 2}
}

// UnitDollars returns a per-unit dollar price rendered with six
// fractional digits, enough to round-trip fractional-share prices.
func UnitDollars(value decimal.Decimal) Amount {
	return Amount{Commodity: Dollar, Value: value, Precision: 6}
}

// Units returns a commodity quantity rendered with six fractional digits.
func Units(commodity string, value decimal.Decimal) Amount {
	return Amount{Commodity: commodity, Value: value, Precision: 6}
}

// Neg returns the amount with its value negated.
func (a Amount) Neg() Amount {
	a.Value = a.Value.Neg()
	return a
}

// String renders the amount in hledger syntax. Currency symbols prefix
// the value ("$-1000.00"); commodity symbols follow it ("10.000000 MSFT").
func (a Amount) String() string {
	if a.Commodity == Dollar {
		return Dollar + a.Value.StringFixed(a.Precision)
	}
	return a.Value.StringFixed(a.Precision) + " " + a.Commodity
}

// PriceType selects between per-unit and whole-posting prices.
type PriceType int

const (
	// UnitPrice is a per-unit price, rendered as "@ $1.50".
	UnitPrice PriceType = iota
	// TotalPrice is a whole-posting price, rendered as "@@ $150.00".
	TotalPrice
)

// Price is a price annotation on a posting.
type Price struct {
	Type   PriceType
	Amount Amount
}

// UnitPriceOf annotates a posting with a per-unit dollar price.
func UnitPriceOf(value decimal.Decimal) *Price {
	return &Price{Type: UnitPrice, Amount: UnitDollars(value)}
}

// TotalPriceOf annotates a posting with a whole-posting dollar price.
func TotalPriceOf(value decimal.Decimal) *Price {
	return &Price{Type: TotalPrice, Amount: Dollars(value)}
}

func (p Price) String() string {
	if p.Type == TotalPrice {
		return "@@ " + p.Amount.String()
	}
	return "@ " + p.Amount.String()
}
