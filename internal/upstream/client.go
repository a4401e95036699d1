// Package upstream is the client for the external trading API's
// paginated events endpoint.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "tickerwire/1.0 (+https://horse.fit)"

	// MaxPageSize is the upstream's documented page cap.
	MaxPageSize = 200

	maxBodyBytes = 8 * 1024 * 1024
)

// EventsPage is one page of the upstream events listing. Cursor is
// opaque; an empty cursor means the listing is exhausted. Events stay
// raw so callers can schema-validate each one individually.
type EventsPage struct {
	Events []json.RawMessage `json:"events"`
	Cursor string            `json:"cursor"`
}

type Client struct {
	baseURL    string
	statusFlag string
	httpClient *http.Client
	userAgent  string
}

type Options struct {
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

func NewClient(baseURL, statusFilter string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		statusFlag: strings.TrimSpace(statusFilter),
		httpClient: client,
		userAgent:  userAgent,
	}
}

// FetchEventsPage requests one page of events with nested markets. The
// pageSize is clamped to the upstream cap; cursor may be empty for the
// first page.
func (c *Client) FetchEventsPage(ctx context.Context, cursor string, pageSize int) (*EventsPage, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("upstream client is not initialized")
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageSize))
	query.Set("with_nested_markets", "true")
	if c.statusFlag != "" {
		query.Set("status", c.statusFlag)
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	endpoint := c.baseURL + "/events?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build events request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch events page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("events page status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read events page body: %w", err)
	}

	var page EventsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode events page: %w", err)
	}

	return &page, nil
}
