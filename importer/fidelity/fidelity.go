// Package fidelity parses Fidelity "Accounts_History" CSV exports into
// importer events.
package fidelity

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hledgerkit/hledgerkit/importer"
	"github.com/hledgerkit/hledgerkit/journal"
	"github.com/hledgerkit/hledgerkit/ledger"
)

// The export wraps its table in preamble and disclaimer text; only
// lines starting with a date are records.
var recordLine = regexp.MustCompile(`^\s*\d{2}/\d{2}/\d{4}`)

var (
	buyAction      = regexp.MustCompile(`(?i)^\s*(reinvestment|you bought)\s+`)
	transferAction = regexp.MustCompile(`(?i)^\s*(transferred|journaled spp purchase credit)\s+`)
	sellAction     = regexp.MustCompile(`(?i)^\s*you sold\s+`)
	rsuAction      = regexp.MustCompile(`(?i)^\s*conversion shares deposited `)
	dividendAction = regexp.MustCompile(`(?i)^\s*dividend received `)
	esppAction     = regexp.MustCompile(`(?i)^\s*you bought espp`)
)

// record is one CSV row by column position.
type record struct {
	Date         time.Time
	Action       string
	Symbol       string
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	Amount       decimal.Decimal
	AcquiredDate *time.Time
}

const (
	colDate = iota
	colAction
	colSymbol
	colDesc
	colType
	colQuantity
	colPrice
	colCommission
	colFees
	colInterest
	colAmount
	colSettlementDate
	colAcquiredDate
	colCount
)

// Parse reads a Fidelity CSV export and returns its records as events
// in ascending date order.
func Parse(content string) ([]importer.Event, error) {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if recordLine.MatchString(line) {
			lines = append(lines, line)
		}
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading fidelity csv: %w", err)
	}

	var records []record
	for _, row := range rows {
		rec, err := parseRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	var events []importer.Event
	for _, rec := range records {
		event, ok := classify(rec)
		if !ok {
			log.Warn().Str("action", rec.Action).Str("date", rec.Date.Format("2006-01-02")).Msg("no parser matched row")
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func parseRecord(row []string) (record, error) {
	if len(row) < colCount {
		padded := make([]string, colCount)
		copy(padded, row)
		row = padded
	}

	var rec record
	var err error
	rec.Date, err = time.Parse("01/02/2006", strings.TrimSpace(row[colDate]))
	if err != nil {
		return rec, fmt.Errorf("parsing row date %q: %w", row[colDate], err)
	}
	rec.Action = strings.TrimSpace(row[colAction])
	rec.Symbol = strings.Trim(strings.TrimSpace(row[colSymbol]), "-+")

	parse := func(field string) decimal.Decimal {
		trimmed := strings.TrimSpace(field)
		if trimmed == "" {
			return decimal.Zero
		}
		value, parseErr := decimal.NewFromString(trimmed)
		if parseErr != nil {
			err = fmt.Errorf("parsing %q: %w", field, parseErr)
		}
		return value
	}
	rec.Quantity = parse(row[colQuantity])
	rec.Price = parse(row[colPrice])
	rec.Amount = parse(row[colAmount])
	if err != nil {
		return rec, err
	}

	if acquired := strings.TrimSpace(row[colAcquiredDate]); acquired != "" {
		date, parseErr := time.Parse("01/02/2006", acquired)
		if parseErr == nil {
			rec.AcquiredDate = &date
		}
	}
	return rec, nil
}

func classify(rec record) (importer.Event, bool) {
	action := strings.ToLower(rec.Action)
	base := importer.Event{
		Date:        rec.Date,
		Symbol:      rec.Symbol,
		Description: rec.Action,
	}

	switch {
	case buyAction.MatchString(rec.Action) && !strings.Contains(action, "closing transaction"):
		base.Kind = importer.KindTrade
		base.Quantity = rec.Quantity
		base.Amount = rec.Amount
		if esppAction.MatchString(rec.Action) {
			base.Tags = append(base.Tags, journal.Tag{Name: "espp"})
		}
		return base, true

	case transferAction.MatchString(rec.Action):
		base.Kind = importer.KindTransfer
		base.Amount = rec.Amount
		return base, true

	case sellAction.MatchString(rec.Action) && !strings.Contains(action, "opening transaction"):
		if rec.AcquiredDate == nil {
			log.Warn().Str("action", rec.Action).Msg("sell row lacks lot acquisition date")
			return base, false
		}
		base.Kind = importer.KindTrade
		base.Lots = []ledger.LotDelta{{Quantity: rec.Quantity, Acquired: *rec.AcquiredDate}}
		base.Amount = rec.Amount
		return base, true

	case rsuAction.MatchString(rec.Action):
		base.Kind = importer.KindRSU
		base.Quantity = rec.Quantity
		base.Price = rec.Price
		return base, true

	case dividendAction.MatchString(rec.Action):
		base.Kind = importer.KindDividend
		base.Amount = rec.Amount
		return base, true
	}
	return base, false
}
