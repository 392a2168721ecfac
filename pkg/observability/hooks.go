// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through package-level hook registries; main (or
// `devflow serve`) installs concrete implementations at startup. The
// defaults are no-ops, so importing this package costs nothing.
//
// # Usage
//
// Register hooks at application startup:
//
//	stats := observability.NewStats()
//	observability.SetResolverHooks(stats)
//	observability.SetCacheHooks(stats)
//
// Libraries call hooks to emit events:
//
//	observability.Resolver().OnResolveStart(ctx, "compatible_versions", id)
//	// ... resolve ...
//	observability.Resolver().OnResolveComplete(ctx, "compatible_versions", id, n, time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Resolver Hooks
// =============================================================================

// ResolverHooks receives events from public service operations
// (registry resolution and evidence checks).
type ResolverHooks interface {
	OnResolveStart(ctx context.Context, op, subject string)
	OnResolveComplete(ctx context.Context, op, subject string, results int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, namespace string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, namespace string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, namespace string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResolverHooks is a no-op implementation of ResolverHooks.
type NoopResolverHooks struct{}

func (NoopResolverHooks) OnResolveStart(context.Context, string, string) {}
func (NoopResolverHooks) OnResolveComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// hookSet is replaced as a whole on every Set call, so readers never lock.
type hookSet struct {
	resolver ResolverHooks
	cache    CacheHooks
	http     HTTPHooks
}

var current atomic.Pointer[hookSet]

func init() { Reset() }

func update(fn func(*hookSet)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetResolverHooks registers resolver hooks. A nil h is ignored.
func SetResolverHooks(h ResolverHooks) {
	if h != nil {
		update(func(s *hookSet) { s.resolver = h })
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks registers HTTP client hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// Resolver returns the registered resolver hooks.
func Resolver() ResolverHooks { return current.Load().resolver }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores every hook to its no-op default.
func Reset() {
	current.Store(&hookSet{
		resolver: NoopResolverHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	})
}
