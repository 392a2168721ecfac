package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	httpTimeout     = 10 * time.Second
	defaultAttempts = 3
)

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrMalformed is returned when a response body cannot be decoded.
	ErrMalformed = errors.New("malformed response")

	// ErrRateLimited is returned for HTTP 429 responses. It is retried,
	// honoring Retry-After, before it reaches the caller.
	ErrRateLimited = errors.New("rate limited")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizePackageID trims surrounding whitespace and lower-cases id,
// the canonical form registries use in URL paths and cache keys.
func NormalizePackageID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// URLEncode percent-encodes a string for use in query strings.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

// PathEscape percent-encodes a single URL path segment.
func PathEscape(s string) string { return url.PathEscape(s) }
