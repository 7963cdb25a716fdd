package importer

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hledgerkit/hledgerkit/ledger"
)

// Accounts maps statement record roles onto hledger account names.
// The zero value is unusable; start from command defaults or a config
// file and merge overrides on top.
type Accounts struct {
	Base       string `yaml:"base"`
	Cash       string `yaml:"cash"`
	Transfer   string `yaml:"transfer"`
	Dividends  string `yaml:"dividends"`
	Interest   string `yaml:"interest"`
	RSU        string `yaml:"rsu"`
	ShortGains string `yaml:"short_term_gains"`
	LongGains  string `yaml:"long_term_gains"`
	Fees       string `yaml:"fees"`

	// CashCommodities are money-market symbols whose buys and sells
	// are cash movements, not positions (e.g. SPAXX).
	CashCommodities []string `yaml:"cash_commodities"`
}

// LoadAccounts reads an accounts mapping from a YAML file.
func LoadAccounts(path string) (Accounts, error) {
	var accounts Accounts
	content, err := os.ReadFile(path)
	if err != nil {
		return accounts, err
	}
	if err := yaml.Unmarshal(content, &accounts); err != nil {
		return accounts, fmt.Errorf("parsing accounts config %s: %w", path, err)
	}
	return accounts, nil
}

// Merge overlays every non-empty field of override onto a.
func (a Accounts) Merge(override Accounts) Accounts {
	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&a.Base, override.Base)
	merge(&a.Cash, override.Cash)
	merge(&a.Transfer, override.Transfer)
	merge(&a.Dividends, override.Dividends)
	merge(&a.Interest, override.Interest)
	merge(&a.RSU, override.RSU)
	merge(&a.ShortGains, override.ShortGains)
	merge(&a.LongGains, override.LongGains)
	merge(&a.Fees, override.Fees)
	if len(override.CashCommodities) > 0 {
		a.CashCommodities = override.CashCommodities
	}
	return a
}

// WithDefaults fills the gaps a config or flag set left open. Cash
// defaults to the base account's cash sub-account.
func (a Accounts) WithDefaults() Accounts {
	if a.Cash == "" && a.Base != "" {
		a.Cash = a.Base + ":cash"
	}
	if a.CashCommodities == nil {
		a.CashCommodities = []string{"SPAXX"}
	}
	return a
}

// IsCashCommodity reports whether symbol is configured as a cash
// equivalent.
func (a Accounts) IsCashCommodity(symbol string) bool {
	return slices.Contains(a.CashCommodities, symbol)
}

// Ledger returns the account set the lot ledger posts to.
func (a Accounts) Ledger() ledger.Accounts {
	return ledger.Accounts{
		Base:       a.Base,
		Cash:       a.Cash,
		ShortGains: a.ShortGains,
		LongGains:  a.LongGains,
		Fees:       a.Fees,
	}
}
