// Package backend provides HTTP clients for the Catalyst backend API: the
// session code exchange and the connector status/control endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Default rate limit for backend calls. Status checks fire on every surface
// mount, so the client smooths bursts instead of hammering the API.
const (
	defaultRequestsPerSecond = 5.0
	defaultBurstSize         = 10
	defaultTimeout           = 30 * time.Second
)

// Client talks to the Catalyst backend API. The zero value is not usable;
// construct with NewClient.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithRateLimit overrides the default request rate limit.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// NewClient creates a backend client. baseURL is the API root including the
// /api prefix (e.g. "http://localhost:5003/api").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurstSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doJSON performs one rate-limited request and decodes the JSON response
// body into out. A non-2xx status is returned as an error after decoding,
// so callers still see structured failure bodies.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}

// transportError marks a network-level failure: the backend never answered.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return fmt.Sprintf("request failed: %v", e.err) }
func (e *transportError) Unwrap() error { return e.err }

// statusError marks a non-success HTTP status with a decodable body.
type statusError struct {
	code int
}

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }
