package ynab

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/hledgerkit/hledgerkit/journal"
)

// Settings configures a budget sync: which budget to pull, how YNAB
// account names map to journal accounts, and where transfers and
// starting balances land.
type Settings struct {
	BaseURL                string            `yaml:"api_base_url"`
	Token                  string            `yaml:"api_token"`
	BudgetName             string            `yaml:"budget_name"`
	StartingBalanceAccount string            `yaml:"starting_balance_account"`
	TransferAccount        string            `yaml:"transfer_account"`
	AccountMap             map[string]string `yaml:"account_map"`
}

// LoadSettings reads Settings from a YAML file.
func LoadSettings(path string) (*Settings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var settings Settings
	if err := yaml.Unmarshal(content, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return &settings, nil
}

// Catalog indexes a budget's payees and categories for lookup by id
// while converting transactions.
type Catalog struct {
	payees     map[string]Payee
	categories map[string]Category
	groupNames map[string]string
}

// NewCatalog builds a Catalog from the budget's category groups and
// payees.
func NewCatalog(groups []CategoryGroup, payees []Payee) *Catalog {
	c := &Catalog{
		payees:     make(map[string]Payee, len(payees)),
		categories: make(map[string]Category),
		groupNames: make(map[string]string, len(groups)),
	}
	for _, p := range payees {
		c.payees[p.ID] = p
	}
	for _, g := range groups {
		c.groupNames[g.ID] = g.Name
		for _, cat := range g.Categories {
			c.categories[cat.ID] = cat
		}
	}
	return c
}

func (c *Catalog) payeeName(id *string) string {
	if id == nil {
		return ""
	}
	return c.payees[*id].Name
}

func (c *Catalog) category(id *string) (category, group string) {
	if id == nil {
		return "", ""
	}
	cat, ok := c.categories[*id]
	if !ok {
		return "", ""
	}
	return cat.Name, c.groupNames[cat.CategoryGroupID]
}

const (
	typeTagPrefix     = "#type="
	categoryTagPrefix = "#category="
)

type memoTags struct {
	kind          string
	categoryGroup string
	category      string
}

// parseMemo splits a memo into override tags and the remaining free
// text. Tags are words like "#type=expenses" and
// "#category=Monthly_Bills:Rent", with underscores standing in for
// spaces.
func parseMemo(memo string) (memoTags, string) {
	var tags memoTags
	var desc []string
	for _, word := range strings.Fields(memo) {
		switch {
		case strings.HasPrefix(word, typeTagPrefix):
			tags.kind = strings.TrimPrefix(word, typeTagPrefix)
		case strings.HasPrefix(word, categoryTagPrefix):
			group, category, _ := strings.Cut(strings.TrimPrefix(word, categoryTagPrefix), ":")
			tags.categoryGroup = strings.ReplaceAll(group, "_", " ")
			tags.category = strings.ReplaceAll(category, "_", " ")
		default:
			desc = append(desc, word)
		}
	}
	return tags, strings.Join(desc, " ")
}

func isInflowCategory(name string) bool {
	return strings.EqualFold(name, "inflow: ready to assign")
}

// Converter renders budget transactions as journal transactions.
type Converter struct {
	catalog  *Catalog
	settings *Settings
}

// NewConverter creates a Converter for the given settings and catalog.
func NewConverter(settings *Settings, catalog *Catalog) *Converter {
	return &Converter{catalog: catalog, settings: settings}
}

// Convert maps one budget transaction to journal transactions. A split
// yields one journal transaction per subtransaction; an unmapped
// account or an unresolvable category yields none, with a warning.
func (c *Converter) Convert(t Transaction) ([]*journal.Transaction, error) {
	if len(t.SubTransactions) == 0 {
		converted, err := c.convertOne(t)
		if err != nil || converted == nil {
			return nil, err
		}
		return []*journal.Transaction{converted}, nil
	}

	var out []*journal.Transaction
	for _, sub := range t.SubTransactions {
		if sub.Deleted {
			continue
		}
		leg := t
		leg.ID = sub.ID
		leg.Amount = sub.Amount
		leg.PayeeID = sub.PayeeID
		leg.CategoryID = sub.CategoryID
		leg.Memo = sub.Memo
		leg.SubTransactions = nil
		converted, err := c.convertOne(leg)
		if err != nil {
			return nil, err
		}
		if converted != nil {
			out = append(out, converted)
		}
	}
	return out, nil
}

func (c *Converter) convertOne(t Transaction) (*journal.Transaction, error) {
	date, err := time.Parse("2006-01-02", t.Date)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: parsing date %q: %w", t.ID, t.Date, err)
	}

	account, ok := c.settings.AccountMap[t.AccountName]
	if !ok {
		log.Warn().
			Str("account", t.AccountName).
			Str("transaction", t.ID).
			Msg("account not in map, transaction ignored")
		return nil, nil
	}

	memo := ""
	if t.Memo != nil {
		memo = *t.Memo
	}
	tags, description := parseMemo(memo)
	payee := c.catalog.payeeName(t.PayeeID)
	categoryName, groupName := c.catalog.category(t.CategoryID)

	counter, ok := c.counterAccount(t, tags, payee, categoryName, groupName)
	if !ok {
		return nil, nil
	}

	var parts []string
	if payee != "" {
		parts = append(parts, payee)
	}
	if description != "" {
		parts = append(parts, description)
	}

	amount := journal.Dollars(decimal.New(t.Amount, -3))
	return &journal.Transaction{
		Date:        date,
		Description: strings.Join(parts, " | "),
		Cleared:     t.Cleared == "cleared" || t.Cleared == "reconciled",
		Postings: []journal.Posting{
			{Account: account, Amount: &amount},
			{Account: counter},
		},
	}, nil
}

func (c *Converter) counterAccount(t Transaction, tags memoTags, payee, categoryName, groupName string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(payee))
	switch {
	case strings.HasPrefix(trimmed, "transfer"):
		return c.settings.TransferAccount, true
	case strings.HasPrefix(trimmed, "starting balance"):
		return c.settings.StartingBalanceAccount, true
	}

	if tags.kind == "" {
		if isInflowCategory(categoryName) {
			tags.kind = "revenues"
		} else {
			tags.kind = "expenses"
		}
	}
	switch tags.kind {
	case "revenue", "revenues":
		tags.kind = "revenues"
		tags.categoryGroup = "income"
		tags.category = payee
	case "investment", "investments":
		tags.kind = "revenues"
		tags.categoryGroup = "investment"
		tags.category = payee
	case "expenses":
		if tags.categoryGroup == "" {
			tags.categoryGroup = groupName
		}
		if tags.category == "" {
			tags.category = categoryName
		}
		if tags.categoryGroup == "" || tags.category == "" {
			log.Warn().Str("transaction", t.ID).Msg("transaction has no resolvable category, ignored")
			return "", false
		}
	default:
		log.Warn().
			Str("transaction", t.ID).
			Str("type", tags.kind).
			Msg("invalid transaction type tag, transaction ignored")
		return "", false
	}
	if tags.category == "" {
		tags.category = "Unknown Payee"
	}
	return tags.kind + ":" + tags.categoryGroup + ":" + tags.category, true
}
