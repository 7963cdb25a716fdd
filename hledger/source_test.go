package hledger

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/hledgerkit/hledgerkit/ledger"
)

const sampleJournal = `2020-12-31 * Fidelity Opening Balance
    assets:broker:amat:20200327      20 AMAT @ $47.17
    assets:broker:amat:20200406      10 AMAT @ $45.41
    assets:broker:amat:20201208      0.160 AMAT @@ $14.30
    assets:broker:amat210219p75      -100 AMATcbacbkPif @@ $164.30
    assets:broker:msft:20191115      238 MSFT @ $148.06
    assets:broker:msft:20200305      35.204 MSFT @@ $6004.08  ; espp:
    assets:broker:msft:20200930      41.594 MSFT@@ $7873.74  ; espp:
    assets:broker:msft210108c250:20201125     -100 MSFTcbabaiCcfa @@ $98.62  ; acquired on 2020-11-25
    assets:broker:cash               $11895.03
    equity:starting balance
`

func fakeClient(t *testing.T, output string) *Client {
	t.Helper()
	return &Client{
		File: "sample.journal",
		Runner: func(_ context.Context, args ...string) ([]byte, error) {
			assert.Equal(t, "print", args[0])
			return []byte(output), nil
		},
	}
}

func TestSourceLots(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2021, time.January, 31, 0, 0, 0, 0, time.UTC)

	t.Run("dated equity lots", func(t *testing.T) {
		source := NewSource(fakeClient(t, sampleJournal))
		lots, err := source.Lots(ctx, "assets:broker", "MSFT", asOf)
		assert.NoError(t, err)
		assert.Equal(t, 3, len(lots))

		byDate := make(map[string]*ledger.Lot)
		for _, lot := range lots {
			byDate[lot.Acquired.Format("2006-01-02")] = lot
		}
		assert.Equal(t, "238", byDate["2019-11-15"].Quantity.String())
		assert.Equal(t, "148.06", byDate["2019-11-15"].UnitCost.String())
		// @@ total converts to unit cost
		assert.Equal(t, "35.204", byDate["2020-03-05"].Quantity.String())
		assert.Equal(t, "170.55", byDate["2020-03-05"].UnitCost.Round(2).String())
		// commodity glued to the price marker still parses
		assert.Equal(t, "41.594", byDate["2020-09-30"].Quantity.String())
	})

	t.Run("option lot date from comment", func(t *testing.T) {
		source := NewSource(fakeClient(t, sampleJournal))
		lots, err := source.Lots(ctx, "assets:broker", "MSFT210108C250", asOf)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(lots))
		assert.Equal(t, "2020-11-25", lots[0].Acquired.Format("2006-01-02"))
		assert.Equal(t, "-100", lots[0].Quantity.String())
		assert.Equal(t, "0.9862", lots[0].UnitCost.String())
	})

	t.Run("undated lot falls back to as-of date", func(t *testing.T) {
		source := NewSource(fakeClient(t, sampleJournal))
		lots, err := source.Lots(ctx, "assets:broker", "AMAT210219P75", asOf)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(lots))
		assert.True(t, lots[0].Acquired.Equal(asOf))
	})

	t.Run("merges postings sharing a date", func(t *testing.T) {
		journal := "2020-12-31 * opening\n" +
			"    assets:broker:vti:20200101      10 VTI @ $100.00\n" +
			"2021-01-05 * rebuy\n" +
			"    assets:broker:vti:20200101      10 VTI @ $120.00\n"
		source := NewSource(fakeClient(t, journal))
		lots, err := source.Lots(ctx, "assets:broker", "VTI", asOf)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(lots))
		assert.Equal(t, "20", lots[0].Quantity.String())
		assert.Equal(t, "110", lots[0].UnitCost.String())
	})

	t.Run("no matches yields no lots", func(t *testing.T) {
		source := NewSource(fakeClient(t, sampleJournal))
		lots, err := source.Lots(ctx, "assets:broker", "GILD", asOf)
		assert.NoError(t, err)
		assert.Equal(t, 0, len(lots))
	})
}

func TestClientPrintArgs(t *testing.T) {
	var got []string
	client := &Client{
		File: "books.journal",
		Runner: func(_ context.Context, args ...string) ([]byte, error) {
			got = args
			return nil, nil
		},
	}
	_, err := client.Print(context.Background(), "acct:^assets:broker", time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, []string{"print", "-f", "books.journal", "-e", "2021-02-01", "acct:^assets:broker"}, got)
}
