// Package api provides a typed client for the sweetcorn query API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds a single request when the client builds its own fetcher.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a non-2xx body is kept on a StatusError.
const maxErrorBody = 4 << 10

// Fetcher performs HTTP requests. *http.Client satisfies it.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f FetcherFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Client is an API client for the sweetcorn backend. It is safe for concurrent use
// and holds no per-request state.
type Client struct {
	baseURL BaseURL
	fetcher Fetcher
}

// Option configures a Client.
type Option func(*Client)

// WithFetcher sets the fetcher used for every request.
func WithFetcher(f Fetcher) Option {
	return func(c *Client) {
		if f != nil {
			c.fetcher = f
		}
	}
}

// NewClient creates a new API client rooted at baseURL.
func NewClient(baseURL BaseURL, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		fetcher: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the root the client joins request paths to.
func (c *Client) BaseURL() BaseURL {
	return c.baseURL
}

// get performs a GET request and unmarshals the response.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	target := c.baseURL.Join(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return &TransportError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{URL: target, StatusCode: resp.StatusCode, Body: string(body)}
		// Jaeger handlers report failures as an envelope with only errors set.
		var envelope Envelope[json.RawMessage]
		if decodeJSON(bytes.NewReader(body), &envelope) == nil {
			statusErr.Errors = envelope.Errors
		}
		return statusErr
	}

	if err := decodeJSON(resp.Body, result); err != nil {
		return &DecodeError{URL: target, Err: err}
	}

	return nil
}

// decodeJSON decodes exactly one JSON value from r. Numbers in untyped fields
// are kept as json.Number so large integers survive re-encoding.
func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return errors.New("unexpected data after JSON value")
		}
		return err
	}
	return nil
}
