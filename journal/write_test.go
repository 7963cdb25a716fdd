package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestWrite(t *testing.T) {
	date := time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)
	sections := []Section{
		{Title: "Transfers", Transactions: []*Transaction{
			{
				Date:        date,
				Description: "transfer in",
				Postings: []Posting{
					{Account: "assets:broker", Amount: amountOf(Dollars(decimal.NewFromInt(500)))},
					{Account: "assets:transfer"},
				},
			},
		}},
		{Title: "Dividends"},
	}

	var buf strings.Builder
	start, end := Period(sections)
	assert.NoError(t, Write(&buf, "hledgerkit fidelity", start, end, sections))

	out := buf.String()
	assert.Contains(t, out, "; automatically generated by hledgerkit fidelity\n")
	assert.Contains(t, out, "; for 2021-03-01 - 2021-03-01\n")
	assert.Contains(t, out, "\n; Transfers\n")
	assert.Contains(t, out, "\n; Dividends\n; NO TRANSACTIONS\n")
	assert.Contains(t, out, "2021-03-01 transfer in\n")
}

func TestPeriod(t *testing.T) {
	mk := func(day int) *Transaction {
		return &Transaction{Date: time.Date(2021, time.March, day, 0, 0, 0, 0, time.UTC)}
	}
	sections := []Section{
		{Title: "a", Transactions: []*Transaction{mk(12), mk(3)}},
		{Title: "b", Transactions: []*Transaction{mk(25)}},
	}
	start, end := Period(sections)
	assert.Equal(t, 3, start.Day())
	assert.Equal(t, 25, end.Day())

	start, end = Period(nil)
	assert.True(t, start.IsZero())
	assert.True(t, end.IsZero())
}
