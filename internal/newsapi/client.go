// Package newsapi fetches the article collection from the news API.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bryan-buckman/newsfront/internal/metrics"
	"github.com/bryan-buckman/newsfront/internal/model"
)

// DefaultURL is the news endpoint used when none is configured.
const DefaultURL = "http://127.0.0.1:8000/api/news/"

// ErrFetchFailed is the single error kind for a failed fetch. It covers
// transport errors, non-2xx responses and undecodable bodies alike.
var ErrFetchFailed = errors.New("fetch failed")

// FetchError describes a failed fetch.
type FetchError struct {
	Op         string // "request", "status" or "decode"
	StatusCode int    // set when Op is "status"
	Err        error
}

func (e *FetchError) Error() string {
	if e.Op == "status" {
		return fmt.Sprintf("fetch failed: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("fetch failed: %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports FetchError as ErrFetchFailed.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// Client issues GET requests against one fixed endpoint.
type Client struct {
	url     string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each fetch. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client for the given endpoint.
func NewClient(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{url: url, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint.
func (c *Client) URL() string { return c.url }

// FetchArticles performs one GET and decodes the JSON array of articles.
// The response order is preserved. Any error returned matches ErrFetchFailed.
func (c *Client) FetchArticles(ctx context.Context) ([]model.Article, error) {
	start := time.Now()
	articles, err := c.fetch(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	metrics.RecordFetch(outcome, time.Since(start).Seconds())
	return articles, err
}

func (c *Client) fetch(ctx context.Context) ([]model.Article, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{Op: "request", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Op: "status", StatusCode: resp.StatusCode}
	}

	var articles []model.Article
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, &FetchError{Op: "decode", Err: err}
	}
	if articles == nil {
		// JSON null decodes to a nil slice; report it as an empty list.
		articles = []model.Article{}
	}
	return articles, nil
}
