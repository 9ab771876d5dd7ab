// Package client is the Go SDK for the expense API. It keeps a local copy
// of the caller's records and answers filter and summary queries without
// further round trips; mutations merge the server's returned record into
// that copy instead of reloading the whole list.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"kharacha/internal/core"
)

type Client struct {
	baseURL  string
	hc       *http.Client
	taxonomy core.Taxonomy

	mu      sync.Mutex
	token   string
	userID  string
	records []core.Expense
}

// New creates a client for the API at baseURL. The taxonomy is checked
// locally before Add and Edit ever reach the wire.
func New(baseURL string, taxonomy core.Taxonomy) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		hc:       &http.Client{Timeout: 15 * time.Second},
		taxonomy: taxonomy,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type sessionData struct {
	User  core.User `json:"user"`
	Token string    `json:"token"`
}

// Register creates an account and starts an authenticated session.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.startSession(ctx, "/api/user/register", username, password)
}

// Login authenticates an existing account.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.startSession(ctx, "/api/user/login", username, password)
}

func (c *Client) startSession(ctx context.Context, path, username, password string) error {
	var data sessionData
	err := c.call(ctx, http.MethodPost, path,
		map[string]string{"username": username, "password": password}, &data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = data.Token
	c.userID = data.User.ID
	c.records = nil
	return nil
}

// UserID returns the authenticated user's ID, empty before login.
func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Load fetches the full record list for the session user, newest first.
func (c *Client) Load(ctx context.Context) error {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()
	if userID == "" {
		return fmt.Errorf("%w: not logged in", core.ErrUnauthorized)
	}

	var records []core.Expense
	err := c.call(ctx, http.MethodPost, "/api/expenses/user",
		map[string]string{"userId": userID}, &records)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
	return nil
}

// Records returns a copy of the local record list.
func (c *Client) Records() []core.Expense {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Expense(nil), c.records...)
}

// Options returns the distinct categories and subcategories present in the
// loaded records, each in first-seen order. The two sets are independent:
// a subcategory stays listed even when its category is filtered away.
func (c *Client) Options() (categories, subcategories []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return core.DistinctCategories(c.records), core.DistinctSubcategories(c.records)
}

// Filter returns the loaded records matching every set condition.
func (c *Client) Filter(opts core.FilterOptions) []core.Expense {
	c.mu.Lock()
	defer c.mu.Unlock()
	return core.FilterExpenses(c.records, opts)
}

// Summarize aggregates the records matching opts into a total and
// per-category amounts.
func (c *Client) Summarize(opts core.FilterOptions) core.Summary {
	return core.Aggregate(c.Filter(opts))
}

// Add creates a record and merges the stored version, with its server-side
// ID and creation time, to the front of the local list.
func (c *Client) Add(ctx context.Context, category, subcategory string, amount core.Money, comments string) (core.Expense, error) {
	if err := c.checkPair(category, subcategory); err != nil {
		return core.Expense{}, err
	}

	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()
	if userID == "" {
		return core.Expense{}, fmt.Errorf("%w: not logged in", core.ErrUnauthorized)
	}

	var saved core.Expense
	err := c.call(ctx, http.MethodPost, "/api/expenses/add", map[string]any{
		"userId":      userID,
		"category":    category,
		"subcategory": subcategory,
		"amount":      amount,
		"comments":    comments,
	}, &saved)
	if err != nil {
		return core.Expense{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append([]core.Expense{saved}, c.records...)
	return saved, nil
}

// Edit patches a record and replaces the local copy with the returned one.
func (c *Client) Edit(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	if patch.Category != nil {
		sub := ""
		if patch.Subcategory != nil {
			sub = *patch.Subcategory
		}
		if err := c.checkPair(*patch.Category, sub); err != nil {
			return core.Expense{}, err
		}
	}

	var updated core.Expense
	err := c.call(ctx, http.MethodPut, "/api/expenses/"+id, patch, &updated)
	if err != nil {
		return core.Expense{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.records {
		if c.records[i].ID == updated.ID {
			c.records[i] = updated
			break
		}
	}
	return updated, nil
}

// Remove deletes a record and drops it from the local list.
func (c *Client) Remove(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodDelete, "/api/expenses/"+id, nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.records {
		if c.records[i].ID == id {
			c.records = append(c.records[:i], c.records[i+1:]...)
			break
		}
	}
	return nil
}

// checkPair validates a category choice against the fixed taxonomy before
// sending it anywhere.
func (c *Client) checkPair(category, subcategory string) error {
	if category == "" {
		return nil
	}
	if subcategory == "" {
		if _, ok := c.taxonomy.Subcategories(category); !ok {
			return fmt.Errorf("%w: unknown category %q", core.ErrValidation, category)
		}
		return nil
	}
	if !c.taxonomy.ValidPair(category, subcategory) {
		return fmt.Errorf("%w: %q is not a subcategory of %q", core.ErrValidation, subcategory, category)
	}
	return nil
}

// call performs one API request and decodes the envelope's data into out.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.mu.Lock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.Unlock()

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if !env.Success {
		return apiError(resp.StatusCode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// apiError maps a failed response back onto the domain error taxonomy.
func apiError(status int, message string) error {
	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", core.ErrValidation, message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", core.ErrUnauthorized, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", core.ErrNotFound, message)
	default:
		return fmt.Errorf("api error (status %d): %s", status, message)
	}
}
