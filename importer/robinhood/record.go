// Package robinhood parses Robinhood account statements (pdftotext
// output of the PDF) into importer events.
package robinhood

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dollarAmount validates statement money cells like "$1,234.56" or
// "-$ 12.30" before stripping them down to a plain number.
var dollarAmount = regexp.MustCompile(`^[+-]?\s*\$\s*[0-9,]+(\.[0-9]{1,2})$`)

// rawRecord is one table row as sliced from the statement, every cell
// still a string. The same shape is used for the shadow-record JSON
// sidecar, so the json tags match the statement's column names.
type rawRecord struct {
	Description string `json:"description"`
	Symbol      string `json:"symbol"`
	AcctType    string `json:"acct_type"`
	Transaction string `json:"transaction"`
	Date        string `json:"date"`
	Qty         string `json:"qty"`
	Price       string `json:"price"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
}

// Record is a validated statement row. Qty, Price, Debit, and Credit
// are nil when the statement left the cell blank.
type Record struct {
	Description string
	Symbol      string
	AcctType    string
	Transaction string
	Date        time.Time
	Qty         *decimal.Decimal
	Price       *decimal.Decimal
	Debit       *decimal.Decimal
	Credit      *decimal.Decimal
}

// Amount returns the signed cash movement of the row: credits are
// positive, debits negative.
func (r Record) Amount() decimal.Decimal {
	if r.Credit != nil {
		return *r.Credit
	}
	if r.Debit != nil {
		return r.Debit.Neg()
	}
	return decimal.Zero
}

// Quantity returns the row's quantity, zero when blank.
func (r Record) Quantity() decimal.Decimal {
	if r.Qty == nil {
		return decimal.Zero
	}
	return *r.Qty
}

func (raw rawRecord) parse() (Record, error) {
	rec := Record{
		Description: raw.Description,
		Symbol:      raw.Symbol,
		AcctType:    raw.AcctType,
		Transaction: raw.Transaction,
	}
	if raw.Transaction == "" || raw.AcctType == "" {
		return rec, fmt.Errorf("record row missing transaction or account type")
	}

	date, err := time.Parse("01/02/2006", strings.TrimSpace(raw.Date))
	if err != nil {
		return rec, fmt.Errorf("parsing record date %q: %w", raw.Date, err)
	}
	rec.Date = date

	if raw.Qty != "" {
		qty, err := parseQty(raw.Qty)
		if err != nil {
			return rec, err
		}
		rec.Qty = &qty
	}
	for _, cell := range []struct {
		value string
		dst   **decimal.Decimal
	}{
		{raw.Price, &rec.Price},
		{raw.Debit, &rec.Debit},
		{raw.Credit, &rec.Credit},
	} {
		if cell.value == "" {
			continue
		}
		amount, err := parseDollar(cell.value)
		if err != nil {
			return rec, err
		}
		*cell.dst = &amount
	}
	return rec, nil
}

// parseQty handles the statement's short-position marker: a quantity
// suffixed with "S" is held short.
func parseQty(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if stripped, ok := strings.CutSuffix(value, "S"); ok {
		qty, err := decimal.NewFromString(stripped)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing quantity %q: %w", value, err)
		}
		return qty.Neg(), nil
	}
	qty, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing quantity %q: %w", value, err)
	}
	return qty, nil
}

func parseDollar(value string) (decimal.Decimal, error) {
	if !dollarAmount.MatchString(value) {
		return decimal.Zero, fmt.Errorf("invalid dollar amount %q", value)
	}
	replacer := strings.NewReplacer("$", "", ",", "", " ", "")
	return decimal.NewFromString(replacer.Replace(strings.TrimSpace(value)))
}

// ShadowPath returns the path of the shadow-record sidecar for a
// statement file: a hidden JSON file next to it, e.g.
// "stmt.pdf" -> ".stmt.json". Sidecars carry rows the PDF table
// mangles, typically split legs whose symbol column is blank.
func ShadowPath(statementPath string) string {
	base := filepath.Base(statementPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(statementPath), "."+name+".json")
}

// LoadShadow reads shadow records from a sidecar file. A missing file
// is not an error; there is simply nothing to add.
func LoadShadow(path string) ([]Record, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var raws []rawRecord
	if err := json.Unmarshal(content, &raws); err != nil {
		return nil, fmt.Errorf("parsing shadow records %s: %w", path, err)
	}
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		rec, err := raw.parse()
		if err != nil {
			return nil, fmt.Errorf("shadow record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
