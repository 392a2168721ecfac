package cache

import "strconv"

// SchemaVersion is bumped whenever cached record types change shape.
const SchemaVersion = 1

// ScopedKeyer prepends a fixed scope to every key of an inner Keyer.
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer scopes inner (DefaultKeyer when nil) under scope.
func NewScopedKeyer(inner Keyer, scope string) *ScopedKeyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, scope: scope}
}

// HTTPKey implements [Keyer] as "<scope>:<inner key>".
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.scope + ":" + k.inner.HTTPKey(namespace, key)
}

// SchemaKeyer returns the keyer registry clients use, scoped by
// [SchemaVersion] ("v1:http:nuget:newtonsoft.json").
func SchemaKeyer() Keyer {
	return NewScopedKeyer(DefaultKeyer{}, "v"+strconv.Itoa(SchemaVersion))
}
