// Package importer turns parsed broker statement records into journal
// transactions, feeding trades and splits through the lot ledger.
package importer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hledgerkit/hledgerkit/journal"
	"github.com/hledgerkit/hledgerkit/ledger"
)

// Kind classifies what a statement record does.
type Kind int

const (
	// KindTrade buys or sells a commodity against cash.
	KindTrade Kind = iota
	// KindTransfer moves cash in or out of the brokerage.
	KindTransfer
	// KindDividend is a cash dividend, optionally per commodity.
	KindDividend
	// KindInterest is interest income on the cash balance.
	KindInterest
	// KindFee is a brokerage fee charged to the cash balance.
	KindFee
	// KindRSU converts granted stock units into a lot without a cash leg.
	KindRSU
	// KindSplit is one leg of a corporate split.
	KindSplit
)

func (k Kind) String() string {
	switch k {
	case KindTrade:
		return "trade"
	case KindTransfer:
		return "transfer"
	case KindDividend:
		return "dividend"
	case KindInterest:
		return "interest"
	case KindFee:
		return "fee"
	case KindRSU:
		return "rsu"
	case KindSplit:
		return "split"
	}
	return "unknown"
}

// Event is one classified statement record, ready to apply against a
// ledger session.
type Event struct {
	Kind        Kind
	Date        time.Time
	Symbol      string
	Description string

	// Quantity is the signed commodity quantity a trade, RSU grant, or
	// split leg moves. Trades closing specific lots carry Lots instead.
	Quantity decimal.Decimal
	Lots     []ledger.LotDelta

	// Amount is the signed cash movement: proceeds for trades,
	// the deposit/withdrawal for transfers, the payout for dividends.
	Amount decimal.Decimal

	// Price is the per-unit grant price of an RSU conversion.
	Price decimal.Decimal

	// CloseOut marks a trade whose direction must be resolved against
	// the current position, e.g. an option expiring worthless.
	CloseOut bool

	Tags []journal.Tag
}
