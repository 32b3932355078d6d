package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/changetower/pkg/observability"
)

// Store is the validating record store. The zero value is not usable; use
// [NewStore] or [OpenStore].
type Store struct {
	backend    Cache
	logger     *log.Logger
	changelogs *Records[ChangelogRecord]
	manifests  *Records[ManifestRecord]
}

// NewStore wraps an already opened backend. A nil backend yields a store
// that is not ready.
func NewStore(backend Cache, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{backend: backend, logger: logger}
	v := validator.New(validator.WithRequiredStructEnabled())

	s.changelogs = &Records[ChangelogRecord]{
		kind:     "changelog",
		cache:    NewScoped(backend, "changelog:"),
		ready:    backend != nil,
		validate: v,
		logger:   logger,
		keyOf:    func(r *ChangelogRecord) string { return r.Key },
		ttlOf:    func(r *ChangelogRecord) time.Duration { return time.Duration(r.TTL) * time.Millisecond },
	}
	s.manifests = &Records[ManifestRecord]{
		kind:     "manifest",
		cache:    NewScoped(backend, "manifest:"),
		ready:    backend != nil,
		validate: v,
		logger:   logger,
		keyOf:    func(r *ManifestRecord) string { return r.Key },
		ttlOf:    func(r *ManifestRecord) time.Duration { return time.Duration(r.TTL) * time.Millisecond },
	}
	return s
}

// OpenStore opens the backend described by opener. If opening fails, the
// backend's storage is destroyed and recreated once. If that fails too, the
// returned store is not ready and all its operations are no-ops.
func OpenStore(ctx context.Context, opener Opener, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}

	backend, err := opener.Open(ctx)
	if err != nil {
		logger.Warn("cache open failed, recreating", "backend", opener.Name(), "err", err)
		if rerr := opener.Recreate(ctx); rerr != nil {
			logger.Error("cache recreate failed", "backend", opener.Name(), "err", rerr)
			return NewStore(nil, logger)
		}
		backend, err = opener.Open(ctx)
		if err != nil {
			logger.Error("cache unavailable, running uncached", "backend", opener.Name(), "err", err)
			return NewStore(nil, logger)
		}
	}
	logger.Debug("cache opened", "backend", opener.Name())
	return NewStore(backend, logger)
}

// Ready reports whether the store has a working backend.
func (s *Store) Ready() bool { return s != nil && s.backend != nil }

// Changelogs returns the changelog record collection.
func (s *Store) Changelogs() *Records[ChangelogRecord] { return s.changelogs }

// Manifests returns the registry manifest record collection.
func (s *Store) Manifests() *Records[ManifestRecord] { return s.manifests }

// Clear wipes both record kinds.
func (s *Store) Clear(ctx context.Context) {
	s.changelogs.Clear(ctx)
	s.manifests.Clear(ctx)
}

// Close closes the backend.
func (s *Store) Close() error {
	if !s.Ready() {
		return nil
	}
	return s.backend.Close()
}

// Records is a typed, validated view of one record kind in a [Store].
// Methods never return errors: failures are logged and become misses.
type Records[T any] struct {
	kind     string
	cache    Cache
	ready    bool
	validate *validator.Validate
	logger   *log.Logger
	keyOf    func(*T) string
	ttlOf    func(*T) time.Duration
}

// Get returns the record stored under key, or nil on a miss, backend
// error, decode failure or validation failure. Undecodable and invalid
// records are deleted. Freshness is the caller's concern.
func (r *Records[T]) Get(ctx context.Context, key string) *T {
	if r == nil || !r.ready {
		return nil
	}

	data, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache read failed", "kind", r.kind, "key", key, "err", err)
		return nil
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, r.kind)
		return nil
	}

	var rec T
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Warn("cache record undecodable", "kind", r.kind, "key", key, "err", err)
		r.drop(ctx, key)
		return nil
	}
	if err := r.validate.Struct(&rec); err != nil {
		r.logger.Warn("cache record invalid", "kind", r.kind, "key", key, "err", err)
		r.drop(ctx, key)
		return nil
	}
	observability.Cache().OnCacheHit(ctx, r.kind)
	return &rec
}

func (r *Records[T]) drop(ctx context.Context, key string) {
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn("cache delete failed", "kind", r.kind, "key", key, "err", err)
	}
}

// Set validates and persists rec. Invalid records are dropped.
func (r *Records[T]) Set(ctx context.Context, rec T) {
	if r == nil || !r.ready {
		return
	}
	if err := r.validate.Struct(&rec); err != nil {
		r.logger.Warn("refusing to store invalid record", "kind", r.kind, "err", err)
		return
	}

	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Warn("cache record unencodable", "kind", r.kind, "err", err)
		return
	}
	key := r.keyOf(&rec)
	if err := r.cache.Set(ctx, key, data, r.ttlOf(&rec)); err != nil {
		r.logger.Warn("cache write failed", "kind", r.kind, "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, r.kind, len(data))
}

// Clear removes every record of this kind.
func (r *Records[T]) Clear(ctx context.Context) {
	if r == nil || !r.ready {
		return
	}
	if err := r.cache.Clear(ctx, ""); err != nil {
		r.logger.Warn("cache clear failed", "kind", r.kind, "err", err)
	}
}
