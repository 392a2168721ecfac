package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/devflow/pkg/cache"
	"github.com/matzehuels/devflow/pkg/observability"
)

// Client provides shared HTTP functionality for registry API clients.
// It handles caching, retry logic, request hooks and common headers.
//
// All methods are safe for concurrent use.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	attempts  int
	delay     time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithRetry sets the number of attempts and the initial backoff delay for
// retryable failures (network errors, 429 and 5xx responses).
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// WithKeyer sets the cache keyer (for example [cache.SchemaKeyer]).
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// NewClient creates a Client backed by c. Cached entries are stored under
// namespace with the given ttl. Headers are applied to all requests; pass
// nil if none are needed. A nil cache disables caching.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string, opts ...Option) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	client := &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
		attempts:  defaultAttempts,
		delay:     time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Cached retrieves v from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is JSON-encoded and
// stored. Retryable fetch failures are retried with exponential backoff.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	fullKey := c.keyer.HTTPKey(c.namespace, key)
	hooks := observability.Cache()

	if !refresh {
		if data, ok, err := c.cache.Get(ctx, fullKey); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, c.namespace)
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, c.namespace)
	}

	if err := retry(ctx, c.attempts, c.delay, fetch); err != nil {
		return err
	}

	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, fullKey, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, c.namespace, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// Decoding failures are reported as [ErrMalformed].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request: %v", ErrNetwork, stripURL(err))
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		err = fmt.Errorf("%s %s%s: %w", req.Method, host, path, stripURL(err))
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, resp.Header); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// stripURL drops the request URL from a *url.Error. Query strings may carry
// credentials such as search API keys.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

func hostPath(u *url.URL) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.Host, u.Path
}

func checkStatus(code int, h http.Header) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrRateLimited, code), After: retryAfter(h)}
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code), After: retryAfter(h)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
