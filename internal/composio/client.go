package composio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public Composio backend.
const DefaultBaseURL = "https://backend.composio.dev"

// Client is a thin gateway to the Composio connector platform. It is safe
// for concurrent use and should be constructed once per process.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Composio backend URL. Useful for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Composio client authenticated with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTools fetches the catalog of callable actions for one app, scoped so
// that execution is authorized for the given entity.
func (c *Client) ListTools(ctx context.Context, app, entityID string) ([]ActionSpec, error) {
	q := url.Values{}
	q.Set("apps", app)
	if entityID != "" {
		q.Set("entityId", entityID)
	}

	var resp struct {
		Items []ActionSpec `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v2/actions?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list %s tools: %w", app, err)
	}
	return resp.Items, nil
}

// ExecuteAction invokes one named action for an entity.
//
// A business-level failure is reported through ActionResult.Successful and
// never as a Go error; the returned error covers transport and decoding
// failures only.
func (c *Client) ExecuteAction(ctx context.Context, action, entityID string, params map[string]any) (*ActionResult, error) {
	if params == nil {
		params = map[string]any{}
	}
	body := map[string]any{
		"entityId": entityID,
		"input":    params,
	}

	var result ActionResult
	path := "/api/v2/actions/" + url.PathEscape(action) + "/execute"
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, fmt.Errorf("execute action %s: %w", action, err)
	}
	return &result, nil
}

// InitiateConnection starts an out-of-band authorization flow for an app.
// The returned Connection carries the redirect URL the end user must visit.
func (c *Client) InitiateConnection(ctx context.Context, app, entityID string) (*Connection, error) {
	body := map[string]any{
		"appName":  app,
		"entityId": entityID,
	}

	var conn Connection
	if err := c.do(ctx, http.MethodPost, "/api/v1/connectedAccounts", body, &conn); err != nil {
		return nil, fmt.Errorf("initiate %s connection: %w", app, err)
	}
	return &conn, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(respBody, 256))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
