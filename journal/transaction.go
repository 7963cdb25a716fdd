package journal

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// Posting is one leg of a transaction: an account, an optional amount,
// and an optional price annotation. A posting without an amount is
// elided; hledger infers its value from the remaining legs.
type Posting struct {
	Account string
	Amount  *Amount
	Price   *Price
}

// Tag is an hledger tag rendered as a comment on the transaction's
// first line, e.g. "; espp:".
type Tag struct {
	Name  string
	Value string
}

// Transaction is a dated set of postings that must balance per
// commodity, plus presentation details.
type Transaction struct {
	Date        time.Time
	Description string
	Cleared     bool
	Tags        []Tag
	Postings    []Posting
}

const (
	postingIndent  = 4
	postingSpacing = 6
)

// String renders the transaction in hledger syntax. Amounts are
// aligned to the longest account name plus a fixed gap, the way
// hand-maintained journals usually are.
func (t *Transaction) String() string {
	longest := 0
	for _, p := range t.Postings {
		if w := runewidth.StringWidth(p.Account); w > longest {
			longest = w
		}
	}

	var buf strings.Builder
	buf.WriteString(t.Date.Format("2006-01-02"))
	buf.WriteByte(' ')
	if t.Cleared {
		buf.WriteString("* ")
	}
	buf.WriteString(t.Description)
	for _, tag := range t.Tags {
		buf.WriteString("  ; ")
		buf.WriteString(tag.Name)
		buf.WriteByte(':')
		if tag.Value != "" {
			buf.WriteByte(' ')
			buf.WriteString(tag.Value)
		}
	}

	for _, p := range t.Postings {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", postingIndent))
		buf.WriteString(p.Account)
		if p.Amount != nil {
			gap := longest - runewidth.StringWidth(p.Account) + postingSpacing
			buf.WriteString(strings.Repeat(" ", gap))
			buf.WriteString(p.Amount.String())
		}
		if p.Price != nil {
			buf.WriteByte(' ')
			buf.WriteString(p.Price.String())
		}
	}
	return buf.String()
}
