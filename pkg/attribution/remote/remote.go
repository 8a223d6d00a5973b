// Package remote implements attribution.Client against the inlay
// attribution API over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/papercomputeco/inlay/pkg/attribution"
	"github.com/papercomputeco/inlay/pkg/authorship"
)

// PriorityHeader carries the advisory scheduling hint to the API.
const PriorityHeader = "X-Inlay-Priority"

const defaultTimeout = 30 * time.Second

// Client fetches attribution records from a running inlay API server.
type Client struct {
	target string
	http   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a Client that talks to the attribution API at target,
// a base URL like "http://localhost:8082".
func NewClient(target string, opts ...Option) *Client {
	c := &Client{
		target: target,
		http:   &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch retrieves the attribution result for doc.
//
// A 404 from the API is not a failure: the document simply has no tracked
// changes, so every line is human-authored and an empty result is returned.
func (c *Client) Fetch(ctx context.Context, doc authorship.DocumentID, priority attribution.Priority) (authorship.AttributionResult, error) {
	endpoint := fmt.Sprintf("%s/v1/attributions?document=%s", c.target, url.QueryEscape(doc.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building attribution request: %w", err)
	}
	req.Header.Set(PriorityHeader, string(priority))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching attribution for %s: %w", doc, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Fall through to decode.
	case http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return authorship.AttributionResult{}, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("attribution API returned %d for %s: %s", resp.StatusCode, doc, string(body))
	}

	var record authorship.Record
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decoding attribution for %s: %w", doc, err)
	}

	if record.Lines == nil {
		record.Lines = authorship.AttributionResult{}
	}

	return record.Lines, nil
}

// Close releases client resources. The shared HTTP client has none to
// release.
func (c *Client) Close() error {
	return nil
}
