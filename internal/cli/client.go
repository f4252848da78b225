package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors the commands branch on for friendlier messages.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoPlanner    = errors.New("no active planner found")
)

// Client is a thin HTTP client for the budgetly API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the given server. The token is sent as a
// bearer token on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CategoryLimit is one category entry of a planner.
type CategoryLimit struct {
	Name  string  `json:"name"`
	Limit float64 `json:"limit"`
}

// Planner is the planner payload the API exchanges.
type Planner struct {
	InitialAmount float64         `json:"initialAmount"`
	StartDate     string          `json:"startDate"`
	EndDate       string          `json:"endDate"`
	Categories    []CategoryLimit `json:"categories"`
}

// CategoryProgress is the derived {limit, spent} pair for one category.
type CategoryProgress struct {
	Limit float64 `json:"limit"`
	Spent float64 `json:"spent"`
}

// ProgressReport is the progress payload the API returns.
type ProgressReport struct {
	Categories    map[string]CategoryProgress `json:"categories"`
	Notifications []string                    `json:"notifications"`
}

// Transaction is one expense or income row.
type Transaction struct {
	ID       int64   `json:"id"`
	Kind     string  `json:"kind"`
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Title    string  `json:"title"`
	Message  string  `json:"message"`
}

// NewTransaction is the request body for creating a transaction.
type NewTransaction struct {
	Date     string `json:"date,omitempty"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Title    string `json:"title,omitempty"`
	Message  string `json:"message,omitempty"`
}

// GetPlanner fetches the planner active today.
func (c *Client) GetPlanner(ctx context.Context) (Planner, error) {
	var p Planner
	err := c.do(ctx, http.MethodGet, "/api/planner", nil, &p)
	return p, err
}

// SetPlanner creates or replaces the caller's planner.
func (c *Client) SetPlanner(ctx context.Context, p Planner) (Planner, error) {
	var saved Planner
	err := c.do(ctx, http.MethodPost, "/api/planner", p, &saved)
	return saved, err
}

// GetProgress fetches today's spending progress.
func (c *Client) GetProgress(ctx context.Context) (ProgressReport, error) {
	var r ProgressReport
	err := c.do(ctx, http.MethodGet, "/api/planner/progress", nil, &r)
	return r, err
}

// AddExpense records a new expense.
func (c *Client) AddExpense(ctx context.Context, t NewTransaction) (Transaction, error) {
	var saved Transaction
	err := c.do(ctx, http.MethodPost, "/api/expenses", t, &saved)
	return saved, err
}

// ListExpenses fetches all recorded expenses, newest first.
func (c *Client) ListExpenses(ctx context.Context) ([]Transaction, error) {
	var out []Transaction
	err := c.do(ctx, http.MethodGet, "/api/expenses", nil, &out)
	return out, err
}

// AddIncome records a new income.
func (c *Client) AddIncome(ctx context.Context, t NewTransaction) (Transaction, error) {
	var saved Transaction
	err := c.do(ctx, http.MethodPost, "/api/incomes", t, &saved)
	return saved, err
}

// ListIncomes fetches all recorded incomes, newest first.
func (c *Client) ListIncomes(ctx context.Context) ([]Transaction, error) {
	var out []Transaction
	err := c.do(ctx, http.MethodGet, "/api/incomes", nil, &out)
	return out, err
}

// DeleteExpense removes an expense by id.
func (c *Client) DeleteExpense(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", id), nil, nil)
}

// DeleteIncome removes an income by id.
func (c *Client) DeleteIncome(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/incomes/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &payload)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		if strings.Contains(payload.Error, "no active planner") {
			return ErrNoPlanner
		}
	}

	if payload.Error != "" {
		return errors.New(payload.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}
