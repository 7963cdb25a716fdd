package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/hledgerkit/hledgerkit/journal"
)

// postingBuilder assembles a trade's postings in presentation order:
// cash first, then lot legs in trade order, then the long-term and
// short-term gain legs when non-zero. The description stays blank for
// the caller to fill.
type postingBuilder struct {
	cash     journal.Posting
	lots     []journal.Posting
	longT    decimal.Decimal
	shortT   decimal.Decimal
	accounts TradeAccounts
}

func newPostingBuilder(accounts TradeAccounts, proceeds decimal.Decimal) *postingBuilder {
	amt := journal.Dollars(proceeds)
	return &postingBuilder{
		cash:     journal.Posting{Account: accounts.Cash, Amount: &amt},
		accounts: accounts,
	}
}

// lotLeg appends a priced posting on the lot's dated sub-account.
func (b *postingBuilder) lotLeg(lot *Lot, quantity, unitPrice decimal.Decimal) {
	amt := journal.Units(MapSymbol(lot.Commodity), quantity)
	b.lots = append(b.lots, journal.Posting{
		Account: lot.SubAccount(),
		Amount:  &amt,
		Price:   journal.UnitPriceOf(unitPrice),
	})
}

// gain accumulates a realized gain into its term bucket.
func (b *postingBuilder) gain(g Gain) {
	if g.LongTerm {
		b.longT = b.longT.Add(g.Amount)
	} else {
		b.shortT = b.shortT.Add(g.Amount)
	}
}

// build returns the ordered postings. Gain legs are negated: realized
// gains credit the revenue account to balance the cash and lot legs.
func (b *postingBuilder) build() []journal.Posting {
	postings := make([]journal.Posting, 0, len(b.lots)+3)
	postings = append(postings, b.cash)
	postings = append(postings, b.lots...)
	if !b.longT.IsZero() {
		amt := journal.Dollars(b.longT.Neg())
		postings = append(postings, journal.Posting{Account: b.accounts.LongGains, Amount: &amt})
	}
	if !b.shortT.IsZero() {
		amt := journal.Dollars(b.shortT.Neg())
		postings = append(postings, journal.Posting{Account: b.accounts.ShortGains, Amount: &amt})
	}
	return postings
}
