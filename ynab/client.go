package ynab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public YNAB API endpoint.
const DefaultBaseURL = "https://api.ynab.com/v1"

// The API allows 200 requests per hour per token.
const requestsPerHour = 200

// Client is a YNAB v1 API client with bearer-token auth and
// client-side rate limiting.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client for the given API token.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Hour/requestsPerHour), 5),
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	log.Debug().Str("path", path).Msg("ynab api request")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ynab api %s: status %d: %s", path, resp.StatusCode, body)
	}

	// every response wraps its payload in a data envelope
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("ynab api %s: decoding response: %w", path, err)
	}
	return json.Unmarshal(envelope.Data, out)
}

func knowledgeQuery(serverKnowledge int64) url.Values {
	if serverKnowledge <= 0 {
		return nil
	}
	return url.Values{"last_knowledge_of_server": []string{strconv.FormatInt(serverKnowledge, 10)}}
}

// Budgets lists the token's budgets.
func (c *Client) Budgets(ctx context.Context) ([]Budget, error) {
	var payload struct {
		Budgets []Budget `json:"budgets"`
	}
	if err := c.get(ctx, "/budgets", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Budgets, nil
}

// BudgetByName resolves a budget by its display name.
func (c *Client) BudgetByName(ctx context.Context, name string) (*Budget, error) {
	budgets, err := c.Budgets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range budgets {
		if budgets[i].Name == name {
			return &budgets[i], nil
		}
	}
	return nil, fmt.Errorf("budget %q not found", name)
}

// Accounts lists a budget's accounts changed since serverKnowledge
// (0 for everything), returning the new server knowledge for delta
// queries.
func (c *Client) Accounts(ctx context.Context, budgetID string, serverKnowledge int64) ([]Account, int64, error) {
	var payload struct {
		Accounts        []Account `json:"accounts"`
		ServerKnowledge int64     `json:"server_knowledge"`
	}
	err := c.get(ctx, "/budgets/"+budgetID+"/accounts", knowledgeQuery(serverKnowledge), &payload)
	return payload.Accounts, payload.ServerKnowledge, err
}

// Payees lists a budget's payees.
func (c *Client) Payees(ctx context.Context, budgetID string, serverKnowledge int64) ([]Payee, int64, error) {
	var payload struct {
		Payees          []Payee `json:"payees"`
		ServerKnowledge int64   `json:"server_knowledge"`
	}
	err := c.get(ctx, "/budgets/"+budgetID+"/payees", knowledgeQuery(serverKnowledge), &payload)
	return payload.Payees, payload.ServerKnowledge, err
}

// CategoryGroups lists a budget's category groups with their
// categories.
func (c *Client) CategoryGroups(ctx context.Context, budgetID string, serverKnowledge int64) ([]CategoryGroup, int64, error) {
	var payload struct {
		CategoryGroups  []CategoryGroup `json:"category_groups"`
		ServerKnowledge int64           `json:"server_knowledge"`
	}
	err := c.get(ctx, "/budgets/"+budgetID+"/categories", knowledgeQuery(serverKnowledge), &payload)
	return payload.CategoryGroups, payload.ServerKnowledge, err
}

// Transactions lists a budget's transactions.
func (c *Client) Transactions(ctx context.Context, budgetID string, serverKnowledge int64) ([]Transaction, int64, error) {
	var payload struct {
		Transactions    []Transaction `json:"transactions"`
		ServerKnowledge int64         `json:"server_knowledge"`
	}
	err := c.get(ctx, "/budgets/"+budgetID+"/transactions", knowledgeQuery(serverKnowledge), &payload)
	return payload.Transactions, payload.ServerKnowledge, err
}
