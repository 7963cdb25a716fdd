package robinhood

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// optionDescription matches option rows like
// "MSFT 05/14/2021 Call $300.00" or
// "Option Expiration for SELB 04/16/2021 Call $7.50".
var optionDescription = regexp.MustCompile(
	`(?i)^(\s*|option expiration for )(?P<underlying>[a-z]+)\s*` +
		`(?P<date>\d{2}/\d{2}/\d{4}|\d{4}-\d{2}-\d{2})\s*` +
		`(?P<type>call|put)\s*` +
		`\$(?P<strike>[\d.,]+)$`,
)

// optionSymbol builds an OCC-style symbol from an option row's
// description: underlying + yymmdd + C/P + strike, with the strike's
// trailing zeros trimmed (7.50 -> 7.5, 300.00 -> 300).
func optionSymbol(description string) (string, error) {
	m := optionDescription.FindStringSubmatch(strings.TrimSpace(description))
	if m == nil {
		return "", fmt.Errorf("invalid options description: %q", description)
	}
	fields := make(map[string]string)
	for i, name := range optionDescription.SubexpNames() {
		if name != "" {
			fields[name] = m[i]
		}
	}

	layout := "2006-01-02"
	if strings.Contains(fields["date"], "/") {
		layout = "01/02/2006"
	}
	expiry, err := time.Parse(layout, fields["date"])
	if err != nil {
		return "", fmt.Errorf("parsing option expiry %q: %w", fields["date"], err)
	}

	strike, err := decimal.NewFromString(strings.ReplaceAll(fields["strike"], ",", ""))
	if err != nil {
		return "", fmt.Errorf("parsing option strike %q: %w", fields["strike"], err)
	}

	typeCode := strings.ToUpper(fields["type"][:1])
	return fmt.Sprintf("%s%s%s%s",
		strings.ToUpper(fields["underlying"]),
		expiry.Format("060102"),
		typeCode,
		trimStrike(strike),
	), nil
}

// trimStrike renders a strike without trailing fractional zeros.
func trimStrike(strike decimal.Decimal) string {
	s := strike.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}
