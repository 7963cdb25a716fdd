// Package ynab pulls budget data from the YNAB v1 REST API and renders
// it as hledger journal transactions.
package ynab

// Budget is one budget in the account, as returned by /budgets.
type Budget struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	LastModifiedOn string `json:"last_modified_on"`
	FirstMonth     string `json:"first_month"`
	LastMonth      string `json:"last_month"`
}

// Account is a budget account.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	OnBudget bool   `json:"on_budget"`
	Closed   bool   `json:"closed"`
	Balance  int64  `json:"balance"`
	Deleted  bool   `json:"deleted"`
}

// Payee is a transaction counterparty.
type Payee struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	TransferAccountID *string `json:"transfer_account_id"`
	Deleted           bool    `json:"deleted"`
}

// Category is a budget category inside a group.
type Category struct {
	ID              string `json:"id"`
	CategoryGroupID string `json:"category_group_id"`
	Name            string `json:"name"`
	Hidden          bool   `json:"hidden"`
	Deleted         bool   `json:"deleted"`
}

// CategoryGroup is a named group of categories.
type CategoryGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Hidden     bool       `json:"hidden"`
	Deleted    bool       `json:"deleted"`
	Categories []Category `json:"categories"`
}

// SubTransaction is one piece of a split transaction.
type SubTransaction struct {
	ID           string  `json:"id"`
	Amount       int64   `json:"amount"`
	PayeeID      *string `json:"payee_id"`
	PayeeName    *string `json:"payee_name"`
	CategoryID   *string `json:"category_id"`
	CategoryName *string `json:"category_name"`
	Memo         *string `json:"memo"`
	Deleted      bool    `json:"deleted"`
}

// Transaction is a budget transaction. Amounts are milliunits: one
// thousandth of the budget currency.
type Transaction struct {
	ID              string           `json:"id"`
	Date            string           `json:"date"`
	Amount          int64            `json:"amount"`
	Cleared         string           `json:"cleared"`
	Approved        bool             `json:"approved"`
	AccountID       string           `json:"account_id"`
	AccountName     string           `json:"account_name"`
	PayeeID         *string          `json:"payee_id"`
	PayeeName       *string          `json:"payee_name"`
	CategoryID      *string          `json:"category_id"`
	CategoryName    *string          `json:"category_name"`
	Memo            *string          `json:"memo"`
	Deleted         bool             `json:"deleted"`
	SubTransactions []SubTransaction `json:"subtransactions"`
}
