package robinhood

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/hledgerkit/hledgerkit/importer"
)

var (
	tradeCodes  = map[string]bool{"Buy": true, "Sell": true, "STO": true, "BTC": true, "BTO": true, "STC": true, "OEXP": true}
	optionCodes = map[string]bool{"STO": true, "BTC": true, "BTO": true, "STC": true, "OEXP": true}
	// Sell-side codes report positive quantities that must be negated.
	sellCodes = map[string]bool{"Sell": true, "STO": true, "STC": true}
)

// Parse reads a statement's text (plus any shadow records from its
// sidecar) and returns events in ascending date order.
func Parse(text string, shadow []Record) ([]importer.Event, error) {
	records := parseStatement(text)
	records = append(records, shadow...)
	if len(records) == 0 {
		return nil, fmt.Errorf("no account activity records found")
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return Events(records), nil
}

// Events classifies statement records into importer events. Rows the
// statement mangles beyond use (split legs with a blank symbol) and
// crypto rows are dropped with a warning.
func Events(records []Record) []importer.Event {
	var events []importer.Event
	for _, rec := range records {
		event, ok := classify(rec)
		if !ok {
			continue
		}
		events = append(events, event)
	}
	return events
}

func classify(rec Record) (importer.Event, bool) {
	base := importer.Event{
		Date:        rec.Date,
		Symbol:      rec.Symbol,
		Description: rec.Description,
		Amount:      rec.Amount(),
	}

	switch {
	case rec.Transaction == "COIN":
		// crypto activity lives in a separate ledger
		return base, false

	case tradeCodes[rec.Transaction]:
		symbol := rec.Symbol
		if optionCodes[rec.Transaction] {
			constructed, err := optionSymbol(rec.Description)
			if err != nil {
				log.Warn().Str("description", rec.Description).Err(err).
					Msg("option description not recognized, keeping raw symbol")
			} else {
				symbol = constructed
			}
		}
		base.Kind = importer.KindTrade
		base.Symbol = symbol
		base.Quantity = rec.Quantity()
		if sellCodes[rec.Transaction] {
			base.Quantity = base.Quantity.Neg()
		}
		if rec.Transaction == "OEXP" {
			base.CloseOut = true
		}
		base.Description = fmt.Sprintf("%s on %s (%s)", rec.Transaction, rec.Description, symbol)
		return base, true

	case rec.Transaction == "CDIV":
		base.Kind = importer.KindDividend
		return base, true
	case rec.Transaction == "INT":
		base.Kind = importer.KindInterest
		return base, true
	case rec.Transaction == "ACH":
		base.Kind = importer.KindTransfer
		return base, true
	case rec.Transaction == "AFEE":
		base.Kind = importer.KindFee
		return base, true

	case rec.Transaction == "SPL" || rec.Transaction == "SPR":
		if rec.Symbol == "" {
			// the PDF table loses the symbol on split rows; a shadow
			// record has to supply it
			log.Warn().Str("description", rec.Description).Msg("split leg without symbol dropped")
			return base, false
		}
		base.Kind = importer.KindSplit
		base.Quantity = rec.Quantity()
		return base, true
	}

	log.Warn().Str("transaction", rec.Transaction).Str("description", rec.Description).Msg("row record not matched")
	return base, false
}
