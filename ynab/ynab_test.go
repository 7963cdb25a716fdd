package ynab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-token")
}

func TestClient(t *testing.T) {
	t.Run("sends bearer token and unwraps the data envelope", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "/budgets", r.URL.Path)
			w.Write([]byte(`{"data":{"budgets":[{"id":"b1","name":"My Budget"}]}}`))
		})

		budgets, err := client.Budgets(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 1, len(budgets))
		assert.Equal(t, "My Budget", budgets[0].Name)
	})

	t.Run("resolves a budget by name", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"budgets":[{"id":"b1","name":"One"},{"id":"b2","name":"Two"}]}}`))
		})

		budget, err := client.BudgetByName(context.Background(), "Two")
		assert.NoError(t, err)
		assert.Equal(t, "b2", budget.ID)

		_, err = client.BudgetByName(context.Background(), "Three")
		assert.Error(t, err)
	})

	t.Run("passes server knowledge as a delta query", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/budgets/b1/transactions", r.URL.Path)
			assert.Equal(t, "1234", r.URL.Query().Get("last_knowledge_of_server"))
			w.Write([]byte(`{"data":{"transactions":[],"server_knowledge":1300}}`))
		})

		_, knowledge, err := client.Transactions(context.Background(), "b1", 1234)
		assert.NoError(t, err)
		assert.Equal(t, int64(1300), knowledge)
	})

	t.Run("surfaces non-200 responses", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"id":"401"}}`, http.StatusUnauthorized)
		})

		_, err := client.Budgets(context.Background())
		assert.Error(t, err)
	})
}

func TestParseMemo(t *testing.T) {
	tags, desc := parseMemo("groceries #type=expenses #category=Monthly_Bills:Rent extra words")
	assert.Equal(t, "expenses", tags.kind)
	assert.Equal(t, "Monthly Bills", tags.categoryGroup)
	assert.Equal(t, "Rent", tags.category)
	assert.Equal(t, "groceries extra words", desc)

	tags, desc = parseMemo("")
	assert.Zero(t, tags)
	assert.Equal(t, "", desc)
}

func testCatalog() *Catalog {
	return NewCatalog(
		[]CategoryGroup{
			{ID: "g1", Name: "Monthly Bills", Categories: []Category{
				{ID: "c1", CategoryGroupID: "g1", Name: "Rent"},
			}},
			{ID: "g2", Name: "Internal Master Category", Categories: []Category{
				{ID: "c2", CategoryGroupID: "g2", Name: "Inflow: Ready to Assign"},
			}},
		},
		[]Payee{
			{ID: "p1", Name: "Landlord"},
			{ID: "p2", Name: "Employer"},
			{ID: "p3", Name: "Transfer : Savings"},
			{ID: "p4", Name: "Starting Balance"},
		},
	)
}

func testConverter() *Converter {
	return NewConverter(&Settings{
		StartingBalanceAccount: "equity:starting balances",
		TransferAccount:        "assets:transfer",
		AccountMap: map[string]string{
			"Checking": "assets:bank:checking",
		},
	}, testCatalog())
}

func strp(s string) *string { return &s }

func TestConvert(t *testing.T) {
	converter := testConverter()

	t.Run("expense from category", func(t *testing.T) {
		out, err := converter.Convert(Transaction{
			ID:          "t1",
			Date:        "2021-03-01",
			Amount:      -1250500,
			Cleared:     "cleared",
			AccountName: "Checking",
			PayeeID:     strp("p1"),
			CategoryID:  strp("c1"),
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, len(out))
		tx := out[0]
		assert.Equal(t, "Landlord", tx.Description)
		assert.True(t, tx.Cleared)
		assert.Equal(t, "assets:bank:checking", tx.Postings[0].Account)
		assert.Equal(t, "$-1250.50", tx.Postings[0].Amount.String())
		assert.Equal(t, "expenses:Monthly Bills:Rent", tx.Postings[1].Account)
		assert.Zero(t, tx.Postings[1].Amount)
	})

	t.Run("inflow becomes revenue keyed by payee", func(t *testing.T) {
		out, err := converter.Convert(Transaction{
			ID:          "t2",
			Date:        "2021-03-05",
			Amount:      2000000,
			Cleared:     "uncleared",
			AccountName: "Checking",
			PayeeID:     strp("p2"),
			CategoryID:  strp("c2"),
		})
		assert.NoError(t, err)
		tx := out[0]
		assert.False(t, tx.Cleared)
		assert.Equal(t, "$2000.00", tx.Postings[0].Amount.String())
		assert.Equal(t, "revenues:income:Employer", tx.Postings[1].Account)
	})

	t.Run("memo tags override the category", func(t *testing.T) {
		out, err := converter.Convert(Transaction{
			ID:          "t3",
			Date:        "2021-03-07",
			Amount:      -400000,
			AccountName: "Checking",
			PayeeID:     strp("p1"),
			CategoryID:  strp("c1"),
			Memo:        strp("quarterly #category=Utilities:Water"),
		})
		assert.NoError(t, err)
		tx := out[0]
		assert.Equal(t, "Landlord | quarterly", tx.Description)
		assert.Equal(t, "expenses:Utilities:Water", tx.Postings[1].Account)
	})

	t.Run("transfer payee routes to the transfer account", func(t *testing.T) {
		out, err := converter.Convert(Transaction{
			ID:          "t4",
			Date:        "2021-03-09",
			Amount:      -500000,
			AccountName: "Checking",
			PayeeID:     strp("p3"),
		})
		assert.NoError(t, err)
		assert.Equal(t, "assets:transfer", out[0].Postings[1].Account)
	})

	t.Run("starting balance routes to equity", func(t *testing.T) {
		out, err := converter.Convert(Transaction{
			ID:          "t5",
			Date:        "2021-01-01",
			Amount:      100000000,
			AccountName: "Checking",
			PayeeID:     strp("p4"),
		})
		assert.NoError(t, err)
		assert.Equal(t, "equity:starting balances", out[0].Postings[1].Account)
	})

	t.Run("unmapped account is dropped", func(t *testing.T) {
		out, err := converter.Convert(Transaction{
			ID:          "t6",
			Date:        "2021-03-10",
			Amount:      -100,
			AccountName: "Unknown Card",
		})
		assert.NoError(t, err)
		assert.Equal(t, 0, len(out))
	})

	t.Run("splits flatten to one transaction per leg", func(t *testing.T) {
		out, err := converter.Convert(Transaction{
			ID:          "t7",
			Date:        "2021-03-12",
			Amount:      -3000000,
			AccountName: "Checking",
			SubTransactions: []SubTransaction{
				{ID: "s1", Amount: -1000000, PayeeID: strp("p1"), CategoryID: strp("c1")},
				{ID: "s2", Amount: -2000000, PayeeID: strp("p1"), CategoryID: strp("c1"),
					Memo: strp("#category=Utilities:Power")},
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, len(out))
		assert.Equal(t, "$-1000.00", out[0].Postings[0].Amount.String())
		assert.Equal(t, "expenses:Utilities:Power", out[1].Postings[1].Account)
	})
}
