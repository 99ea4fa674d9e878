// Package api implements the driven backend ports over the metatext
// REST API. Reads are memoised through the response cache; every
// successful mutation invalidates the affected key prefixes so the next
// read refetches.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/metatext-labs/metatext-cli/internal/cache"
	"github.com/metatext-labs/metatext-cli/internal/logger"
)

const (
	// DefaultBaseURL is the production backend endpoint.
	DefaultBaseURL = "https://api.metatext.app"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// requestsPerSecond is the proactive client-side throttle.
	requestsPerSecond = 10

	// requestBurst allows short bursts above the sustained rate.
	requestBurst = 5
)

// Client talks to the metatext backend. It implements driven.ChunkAPI,
// driven.CompressionAPI, driven.SessionAPI, and driven.CurrentUserProvider.
type Client struct {
	baseURL     string
	http        *http.Client
	cache       *cache.Cache
	rateLimiter *rate.Limiter
	readTTL     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates requests with a static bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		if token == "" {
			return
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		c.http = oauth2.NewClient(context.Background(), ts)
		c.http.Timeout = DefaultTimeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithCache attaches a response cache for idempotent reads.
// Without one, every read hits the network.
func WithCache(responseCache *cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = responseCache
		if ttl > 0 {
			c.readTTL = ttl
		}
	}
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: DefaultTimeout},
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		readTTL:     cache.DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one request and decodes the JSON response into out
// (unless out is nil). Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("%s %s", method, endpoint)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// cachedGet fetches through the response cache when one is attached.
func cachedGet[T any](ctx context.Context, c *Client, key, path string, query url.Values) (T, error) {
	fill := func(ctx context.Context) (T, error) {
		var out T
		err := c.do(ctx, http.MethodGet, path, query, nil, &out)
		return out, err
	}
	if c.cache == nil {
		return fill(ctx)
	}
	return cache.Do(ctx, c.cache, key, c.readTTL, fill)
}

// invalidate drops cached reads matching the given key patterns.
func (c *Client) invalidate(patterns ...string) {
	if c.cache == nil {
		return
	}
	for _, pattern := range patterns {
		c.cache.Invalidate(pattern)
	}
}
