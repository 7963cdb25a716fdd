package hledger

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hledgerkit/hledgerkit/ledger"
)

// postingLine matches a commodity posting inside hledger print output,
// e.g. "    assets:broker:msft:20191115      238 MSFT @ $148.06" or
// "    ...  -100 MSFTcbabaiCcfa @@ $98.62  ; acquired on 2020-11-25".
// The commodity token may be glued to the price marker ("MSFT@@").
var postingLine = regexp.MustCompile(
	`^\s+(?P<account>\S+)\s+(?P<quantity>-?[\d.]+)\s*(?P<commodity>[A-Za-z_]+)\s*(?P<marker>@@?)\s*\$(?P<price>-?[\d.]+)\s*(?:;(?P<comment>.*))?$`,
)

var (
	dateSuffix   = regexp.MustCompile(`:(\d{8})$`)
	acquiredNote = regexp.MustCompile(`acquired on (\d{4}-\d{2}-\d{2})`)
)

// Source loads lots by parsing the posting lines of a base account's
// subtree out of `hledger print` output. It implements
// ledger.LotSource.
type Source struct {
	client *Client
}

// NewSource creates a Source over client.
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// Lots returns the open lots of commodity under account as of asOf,
// ordered by acquisition date. Postings sharing an acquisition date
// are merged into one lot with a cost-weighted unit basis. Lot dates
// come from the ":YYYYMMDD" sub-account suffix, falling back to an
// "acquired on" comment and finally to asOf itself.
func (s *Source) Lots(ctx context.Context, account, commodity string, asOf time.Time) ([]*ledger.Lot, error) {
	out, err := s.client.Print(ctx, fmt.Sprintf("acct:^%s", account), asOf)
	if err != nil {
		return nil, err
	}

	journalCommodity := ledger.MapSymbol(commodity)
	byDate := make(map[string]*ledger.Lot)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := postingLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		fields := named(postingLine, m)
		if fields["commodity"] != journalCommodity || !strings.HasPrefix(fields["account"], account+":") {
			continue
		}

		quantity, err := decimal.NewFromString(fields["quantity"])
		if err != nil {
			log.Warn().Str("line", scanner.Text()).Msg("skipping unparsable quantity")
			continue
		}
		price, err := decimal.NewFromString(fields["price"])
		if err != nil {
			log.Warn().Str("line", scanner.Text()).Msg("skipping unparsable price")
			continue
		}

		unitCost := price
		if fields["marker"] == "@@" && !quantity.IsZero() {
			unitCost = price.Div(quantity.Abs())
		}

		acquired, err := acquiredDate(fields["account"], fields["comment"], asOf)
		if err != nil {
			return nil, err
		}

		key := acquired.Format("20060102")
		if existing, ok := byDate[key]; ok {
			merged := existing.Quantity.Add(quantity)
			if !merged.IsZero() {
				totalCost := existing.Quantity.Mul(existing.UnitCost).Add(quantity.Mul(unitCost))
				existing.UnitCost = totalCost.Div(merged)
			}
			existing.Quantity = merged
			continue
		}
		byDate[key] = &ledger.Lot{
			Account:   account,
			Commodity: commodity,
			Acquired:  acquired,
			Quantity:  quantity,
			UnitCost:  unitCost,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	lots := make([]*ledger.Lot, 0, len(byDate))
	for _, lot := range byDate {
		lots = append(lots, lot)
	}
	return lots, nil
}

func acquiredDate(account, comment string, asOf time.Time) (time.Time, error) {
	if m := dateSuffix.FindStringSubmatch(account); m != nil {
		return time.Parse("20060102", m[1])
	}
	if m := acquiredNote.FindStringSubmatch(comment); m != nil {
		return time.Parse("2006-01-02", m[1])
	}
	return asOf, nil
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
