package appsheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public AppSheet API v2 root.
	DefaultBaseURL     = "https://api.appsheet.com/api/v2"
	defaultHTTPTimeout = 30 * time.Second

	actionFind = "Find"
	actionAdd  = "Add"
)

// ErrEmptyBody reports a 200 response without content.
var ErrEmptyBody = errors.New("empty response body")

// HTTPDoer is the subset of *http.Client used by the client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config captures the runtime settings required to talk to AppSheet.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
	Credentials    Credentials
}

// Client issues table actions against the AppSheet API.
type Client struct {
	cfg        Config
	httpClient HTTPDoer
	timeout    time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an AppSheet client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// HTTPStatusError reports a non-200 response.
type HTTPStatusError struct {
	Table      string
	Action     string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("appsheet %s %s: http %d: %s", strings.ToLower(e.Action), e.Table, e.StatusCode, body)
}

type actionRequest struct {
	Action     string         `json:"Action"`
	Properties map[string]any `json:"Properties"`
	Rows       []Row          `json:"Rows"`
}

// Find returns every row of table.
func (c *Client) Find(ctx context.Context, table string) ([]Row, error) {
	body, err := c.do(ctx, table, actionRequest{Action: actionFind, Properties: map[string]any{}, Rows: []Row{}})
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("appsheet find %s: %w", table, ErrEmptyBody)
	}
	rows, err := decodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("appsheet find %s: decode rows: %w", table, err)
	}
	return rows, nil
}

// Add inserts rows into table in a single request.
func (c *Client) Add(ctx context.Context, table string, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	_, err := c.do(ctx, table, actionRequest{Action: actionAdd, Properties: map[string]any{}, Rows: rows})
	return err
}

func (c *Client) do(ctx context.Context, table string, payload actionRequest) ([]byte, error) {
	op := "appsheet " + strings.ToLower(payload.Action)
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, fmt.Errorf("%s: table name required", op)
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "apps", c.cfg.Credentials.ApplicationID, "tables", table, "Action")
	if err != nil {
		return nil, fmt.Errorf("%s: build url: %w", op, err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("ApplicationAccessKey", c.cfg.Credentials.ApplicationKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: http error (timeout=%s): %w", op, table, c.timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", op, table, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{Table: table, Action: payload.Action, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// decodeRows accepts both the bare array and the {"Rows": [...]} envelope.
func decodeRows(body []byte) ([]Row, error) {
	trimmed := bytes.TrimSpace(body)
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if trimmed[0] == '{' {
		var envelope struct {
			Rows []Row `json:"Rows"`
		}
		if err := decoder.Decode(&envelope); err != nil {
			return nil, err
		}
		return nonNil(envelope.Rows), nil
	}
	var rows []Row
	if err := decoder.Decode(&rows); err != nil {
		return nil, err
	}
	return nonNil(rows), nil
}

func nonNil(rows []Row) []Row {
	if rows == nil {
		return []Row{}
	}
	return rows
}
