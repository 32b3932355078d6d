package cache

import (
	"context"
	"time"
)

// Scoped wraps a Cache so that every key is prefixed with a namespace.
// The store uses one scope per record kind so that kinds can be cleared
// independently on a shared backend:
//
//	changelogs := NewScoped(backend, "changelog:")
//	manifests := NewScoped(backend, "manifest:")
type Scoped struct {
	inner  Cache
	prefix string
}

// NewScoped creates a cache view whose keys are prefixed with prefix.
// A nil inner cache is replaced with [NullCache].
func NewScoped(inner Cache, prefix string) *Scoped {
	if inner == nil {
		inner = NewNullCache()
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// Prefix returns the namespace prepended to every key.
func (s *Scoped) Prefix() string { return s.prefix }

func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *Scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Clear removes only keys inside this scope.
func (s *Scoped) Clear(ctx context.Context, prefix string) error {
	return s.inner.Clear(ctx, s.prefix+prefix)
}

// Close does not close the shared inner cache.
func (s *Scoped) Close() error { return nil }

var _ Cache = (*Scoped)(nil)
