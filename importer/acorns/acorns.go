// Package acorns parses Acorns monthly statements (pdftotext output)
// into importer events, one slice per statement section.
package acorns

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hledgerkit/hledgerkit/importer"
	"github.com/hledgerkit/hledgerkit/ledger"
)

const (
	datePattern     = `\d{1,2}/\d{1,2}/\d{4}`
	currencyPattern = `\(?\$\s*[\d,]*\.\d{2}\)?`
	descPattern     = `\s{2}[\w ()]+\s{2}`
	quantityPattern = `[\d,]*\.?\d*`
)

var (
	periodLine = regexp.MustCompile(
		`statement period\s+(` + datePattern + `)\s*-\s*(` + datePattern + `)`)
	transferLine = regexp.MustCompile(
		`^\s*(?P<date>` + datePattern + `)(?P<desc>` + descPattern + `)(?P<amount>` + currencyPattern + `)\s*$`)
	buyLine = regexp.MustCompile(
		`^\s*(?P<date>` + datePattern + `)\s*` + datePattern + `\s*(?P<activity>\w+)(?P<desc>` + descPattern +
			`)(?P<quantity>` + quantityPattern + `)\s*(?P<price>` + currencyPattern + `)\s*(?P<amount>` + currencyPattern + `)\s*$`)
	dividendLine = regexp.MustCompile(
		`^\s*(?P<date>` + datePattern + `)\s*(?P<ticker>[A-Z]+) Dividend Reinvestment\s*(?P<amount>` + currencyPattern + `)\s*$`)
	realizedLine = regexp.MustCompile(
		`^\s*(?P<soldDate>` + datePattern + `)\s*(?P<acquiredDate>` + datePattern + `)(?P<desc>` + descPattern +
			`)(?P<price>` + currencyPattern + `)\s*(?P<quantity>` + quantityPattern + `)\s*(?P<value>` + currencyPattern +
			`)\s*(?P<costBasis>` + currencyPattern + `)\s*(?P<gainLoss>` + currencyPattern + `)\s*$`)
	tickerInDesc = regexp.MustCompile(`\(([A-Z]+)\)`)
)

// Statement is a parsed Acorns statement, events grouped the way the
// statement sections are, each slice in statement order.
type Statement struct {
	Start, End time.Time
	Transfers  []importer.Event
	Dividends  []importer.Event
	Buys       []importer.Event
	ShortSells []importer.Event
	LongSells  []importer.Event
}

// Events returns the statement's events merged in processing order:
// buys before sells so closes find their lots, cash events first.
func (s *Statement) Events() []importer.Event {
	var events []importer.Event
	events = append(events, s.Transfers...)
	events = append(events, s.Dividends...)
	events = append(events, s.Buys...)
	events = append(events, s.ShortSells...)
	events = append(events, s.LongSells...)
	return events
}

// Parse reads an Acorns statement's text.
func Parse(text string) (*Statement, error) {
	lines := strings.Split(text, "\n")

	stmt := &Statement{}
	if err := stmt.parsePeriod(lines); err != nil {
		return nil, err
	}
	stmt.Transfers = section(lines, "deposits and withdrawals summary", "net deposits and withdrawals", transferLine, parseTransfer)
	stmt.Dividends = section(lines, "purchases and sales summary", "net purchases and sales", dividendLine, parseDividend)
	stmt.Buys = section(lines, "securities bought", "total securities bought", buyLine, parseBuy)
	stmt.ShortSells = section(lines, "realized gains & losses for this period: short-term", "total short-term gain (loss)", realizedLine, parseRealized)
	stmt.LongSells = section(lines, "realized gains & losses for this period: long-term", "total long-term gain (loss)", realizedLine, parseRealized)
	return stmt, nil
}

func (s *Statement) parsePeriod(lines []string) error {
	for _, line := range lines {
		m := periodLine.FindStringSubmatch(strings.ToLower(line))
		if m == nil {
			continue
		}
		start, err := time.Parse("1/2/2006", m[1])
		if err != nil {
			continue
		}
		end, err := time.Parse("1/2/2006", m[2])
		if err != nil {
			continue
		}
		s.Start, s.End = start, end
		return nil
	}
	return fmt.Errorf("statement period not found")
}

// section scans the lines between a start and end keyword and parses
// every line the pattern recognizes.
func section(lines []string, startKeyword, endKeyword string, pattern *regexp.Regexp, parse func(map[string]string) (importer.Event, error)) []importer.Event {
	var events []importer.Event
	started := false
	for _, line := range lines {
		lower := strings.ToLower(line)
		switch {
		case !started && strings.Contains(lower, startKeyword):
			started = true
		case started && strings.Contains(lower, endKeyword):
			return events
		case started:
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			event, err := parse(named(pattern, m))
			if err != nil {
				log.Warn().Err(err).Str("line", strings.TrimSpace(line)).Msg("skipping statement line")
				continue
			}
			events = append(events, event)
		}
	}
	return events
}

func parseTransfer(fields map[string]string) (importer.Event, error) {
	date, err := time.Parse("1/2/2006", fields["date"])
	if err != nil {
		return importer.Event{}, err
	}
	amount, err := ParseDollar(fields["amount"])
	if err != nil {
		return importer.Event{}, err
	}
	return importer.Event{
		Kind:        importer.KindTransfer,
		Date:        date,
		Description: strings.TrimSpace(fields["desc"]),
		Amount:      amount,
	}, nil
}

func parseDividend(fields map[string]string) (importer.Event, error) {
	date, err := time.Parse("1/2/2006", fields["date"])
	if err != nil {
		return importer.Event{}, err
	}
	amount, err := ParseDollar(fields["amount"])
	if err != nil {
		return importer.Event{}, err
	}
	return importer.Event{
		Kind:        importer.KindDividend,
		Date:        date,
		Symbol:      fields["ticker"],
		Description: fields["ticker"] + " Dividends",
		Amount:      amount,
	}, nil
}

func parseBuy(fields map[string]string) (importer.Event, error) {
	activity := strings.ToLower(strings.TrimSpace(fields["activity"]))
	if activity != "buy" && activity != "bought" {
		return importer.Event{}, fmt.Errorf("unsupported activity %q", fields["activity"])
	}
	date, err := time.Parse("1/2/2006", fields["date"])
	if err != nil {
		return importer.Event{}, err
	}
	quantity, err := decimal.NewFromString(strings.ReplaceAll(fields["quantity"], ",", ""))
	if err != nil {
		return importer.Event{}, fmt.Errorf("parsing quantity %q: %w", fields["quantity"], err)
	}
	amount, err := ParseDollar(fields["amount"])
	if err != nil {
		return importer.Event{}, err
	}
	desc := strings.TrimSpace(fields["desc"])
	return importer.Event{
		Kind:        importer.KindTrade,
		Date:        date,
		Symbol:      ticker(desc),
		Description: desc + " Buy",
		Quantity:    quantity,
		Amount:      amount.Neg(),
	}, nil
}

// parseRealized turns one realized gain/loss row into a specific-lot
// close: the row names the acquisition date, the proceeds, and the
// cost basis; the gain itself is recomputed by the ledger.
func parseRealized(fields map[string]string) (importer.Event, error) {
	soldDate, err := time.Parse("1/2/2006", fields["soldDate"])
	if err != nil {
		return importer.Event{}, err
	}
	acquiredDate, err := time.Parse("1/2/2006", fields["acquiredDate"])
	if err != nil {
		return importer.Event{}, err
	}
	quantity, err := decimal.NewFromString(strings.ReplaceAll(fields["quantity"], ",", ""))
	if err != nil {
		return importer.Event{}, fmt.Errorf("parsing quantity %q: %w", fields["quantity"], err)
	}
	value, err := ParseDollar(fields["value"])
	if err != nil {
		return importer.Event{}, err
	}
	costBasis, err := ParseDollar(fields["costBasis"])
	if err != nil {
		return importer.Event{}, err
	}
	reported, err := ParseDollar(fields["gainLoss"])
	if err != nil {
		return importer.Event{}, err
	}
	if diff := value.Sub(costBasis); !diff.Equal(reported) {
		log.Warn().
			Str("reported", reported.String()).
			Str("calculated", diff.String()).
			Msg("mismatch of reported and calculated gains/losses")
	}

	desc := strings.TrimSpace(fields["desc"])
	return importer.Event{
		Kind:        importer.KindTrade,
		Date:        soldDate,
		Symbol:      ticker(desc),
		Description: fmt.Sprintf("%s Sell (Acquired on %s)", desc, acquiredDate.Format("2006-01-02")),
		Lots:        []ledger.LotDelta{{Quantity: quantity.Neg(), Acquired: acquiredDate}},
		Amount:      value,
	}, nil
}

func ticker(desc string) string {
	if m := tickerInDesc.FindStringSubmatch(desc); m != nil {
		return m[1]
	}
	return "Unknown"
}

// ParseDollar parses statement currency cells like "$1,234.56" or
// "($12.30)", parentheses meaning negative.
func ParseDollar(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	negative := strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")")
	replacer := strings.NewReplacer("(", "", ")", "", "$", "", ",", "", " ", "")
	amount, err := decimal.NewFromString(replacer.Replace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid dollar amount %q: %w", value, err)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

func named(re *regexp.Regexp, match []string) map[string]string {
	fields := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if name != "" {
			fields[name] = match[i]
		}
	}
	return fields
}
