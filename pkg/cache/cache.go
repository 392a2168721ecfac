// Package cache provides byte-level caching of registry responses.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [MemoryCache]: bounded in-process LRU
//   - [RedisCache]: shared cache for multi-instance `devflow serve` deployments
//   - [NullCache]: caching disabled
//
// All backends implement [Cache]. Keys are produced by a [Keyer] so that
// different registries never collide, and [SchemaKeyer] scopes them by the
// record layout so an upgrade never decodes entries written by an older
// release.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys.
//
// Get reports a miss as (nil, false, nil). Expired entries are misses.
// A ttl of 0 passed to Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key for a registry response within namespace.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer produces unscoped keys of the form "http:<namespace>:<key>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey implements [Keyer].
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
