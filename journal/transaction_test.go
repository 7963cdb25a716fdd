package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func amountOf(a Amount) *Amount { return &a }

func TestTransactionString(t *testing.T) {
	date := time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("aligns amounts to longest account", func(t *testing.T) {
		tx := &Transaction{
			Date:        date,
			Description: "buy msft",
			Cleared:     true,
			Postings: []Posting{
				{Account: "assets:broker", Amount: amountOf(Dollars(decimal.NewFromInt(-1000)))},
				{
					Account: "assets:broker:msft:20210301",
					Amount:  amountOf(Units("MSFT", decimal.NewFromInt(10))),
					Price:   UnitPriceOf(decimal.NewFromInt(100)),
				},
			},
		}
		expected := "2021-03-01 * buy msft\n" +
			"    assets:broker" + strings.Repeat(" ", 20) + "$-1000.00\n" +
			"    assets:broker:msft:20210301      10.000000 MSFT @ $100.000000"
		assert.Equal(t, expected, tx.String())
	})

	t.Run("renders tags on the first line", func(t *testing.T) {
		tx := &Transaction{
			Date:        date,
			Description: "espp purchase",
			Tags:        []Tag{{Name: "espp"}},
			Postings: []Posting{
				{Account: "assets:broker", Amount: amountOf(Dollars(decimal.NewFromInt(-10)))},
				{Account: "equity:espp"},
			},
		}
		expected := "2021-03-01 espp purchase  ; espp:\n" +
			"    assets:broker      $-10.00\n" +
			"    equity:espp"
		assert.Equal(t, expected, tx.String())
	})

	t.Run("elided posting has no trailing spaces", func(t *testing.T) {
		tx := &Transaction{
			Date:        date,
			Description: "transfer",
			Postings: []Posting{
				{Account: "assets:checking", Amount: amountOf(Dollars(decimal.NewFromInt(500)))},
				{Account: "assets:transfer"},
			},
		}
		expected := "2021-03-01 transfer\n" +
			"    assets:checking      $500.00\n" +
			"    assets:transfer"
		assert.Equal(t, expected, tx.String())
	})
}
