package fidelity

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/hledgerkit/hledgerkit/importer"
)

const sampleCSV = `

Brokerage

Date,Action,Symbol,Description,Type,Quantity,Price,Commission,Fees,Interest,Amount,Settlement Date,Acquired Date
 03/01/2021, YOU BOUGHT ESPP MICROSOFT CORP (MSFT) (Cash) ,MSFT,MICROSOFT CORP,Cash,43.669,210.35,,,,-9185.77,03/03/2021,
 02/16/2021, DIVIDEND RECEIVED MICROSOFT CORP (MSFT) (Cash) ,MSFT,MICROSOFT CORP,Cash,,,,,,124.12,,
 02/10/2021, TRANSFERRED FROM TO BROKERAGE OPTION (Cash) ,,No Description,Cash,,,,,,5000,,
 03/15/2021, YOU SOLD MICROSOFT CORP (MSFT) (Cash) ,MSFT,MICROSOFT CORP,Cash,-38,237.04,,0.11,,9007.41,03/17/2021,11/15/2019
 03/20/2021, CONVERSION SHARES DEPOSITED MICROSOFT CORP (MSFT) (Cash) ,MSFT,MICROSOFT CORP,Cash,40,230.35,,,,,03/20/2021,
 03/25/2021, JOURNALED SPP PURCHASE CREDIT (Cash) ,,No Description,Cash,,,,,,-9185.77,,
 04/01/2021, YOU BOUGHT CLOSING TRANSACTION CALL (MSFT) MAY 14 21 $300 (Cash) ,-MSFT210514C300,CALL (MSFT),Cash,1,0.5,,0.02,,-50.02,04/05/2021,

This is a disclaimer line without a date.
`

func TestParse(t *testing.T) {
	events, err := Parse(sampleCSV)
	assert.NoError(t, err)
	// the options buy-to-close row has no parser and is skipped
	assert.Equal(t, 6, len(events))

	t.Run("sorted by date", func(t *testing.T) {
		for i := 1; i < len(events); i++ {
			assert.True(t, !events[i].Date.Before(events[i-1].Date))
		}
	})

	t.Run("transfer", func(t *testing.T) {
		e := events[0]
		assert.Equal(t, importer.KindTransfer, e.Kind)
		assert.Equal(t, "5000", e.Amount.String())
	})

	t.Run("dividend", func(t *testing.T) {
		e := events[1]
		assert.Equal(t, importer.KindDividend, e.Kind)
		assert.Equal(t, "MSFT", e.Symbol)
		assert.Equal(t, "124.12", e.Amount.String())
	})

	t.Run("espp buy is tagged", func(t *testing.T) {
		e := events[2]
		assert.Equal(t, importer.KindTrade, e.Kind)
		assert.Equal(t, "43.669", e.Quantity.String())
		assert.Equal(t, "-9185.77", e.Amount.String())
		assert.Equal(t, 1, len(e.Tags))
		assert.Equal(t, "espp", e.Tags[0].Name)
	})

	t.Run("sell carries its lot", func(t *testing.T) {
		e := events[3]
		assert.Equal(t, importer.KindTrade, e.Kind)
		assert.Equal(t, 1, len(e.Lots))
		assert.Equal(t, "-38", e.Lots[0].Quantity.String())
		assert.Equal(t, "2019-11-15", e.Lots[0].Acquired.Format("2006-01-02"))
		assert.Equal(t, "9007.41", e.Amount.String())
	})

	t.Run("rsu conversion", func(t *testing.T) {
		e := events[4]
		assert.Equal(t, importer.KindRSU, e.Kind)
		assert.Equal(t, "40", e.Quantity.String())
		assert.Equal(t, "230.35", e.Price.String())
	})

	t.Run("journaled credit is a transfer", func(t *testing.T) {
		e := events[5]
		assert.Equal(t, importer.KindTransfer, e.Kind)
		assert.Equal(t, "-9185.77", e.Amount.String())
	})
}
