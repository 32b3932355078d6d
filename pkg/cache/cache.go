// Package cache provides the durable record store and the in-memory
// changelog cache.
//
// # Overview
//
// Storage is split in two layers:
//
//   - [Cache] is a raw byte-oriented backend (file, SQLite, Redis, MongoDB
//     or null). Backends know nothing about records.
//   - [Store] sits on top of one backend and exposes typed, validated
//     [Records] per record kind: [Store.Changelogs] and [Store.Manifests].
//
// The store never fails its callers. Backend errors and records that fail
// validation are logged and turned into misses or no-ops. If the backend
// cannot be opened even after one destructive recreation, [OpenStore]
// returns a store whose [Store.Ready] is false and every operation is a
// no-op, so the rest of the system runs uncached.
//
// [Memory] is separate: a bounded, process-lifetime cache of dependency
// changelogs used while building dependency trees.
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by storage backends.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key starting with prefix. An empty prefix clears all.
	Clear(ctx context.Context, prefix string) error

	// Close releases backend resources.
	Close() error
}

// Opener opens a backend and knows how to destroy and recreate its
// underlying storage when opening fails.
type Opener interface {
	// Name identifies the backend in logs ("file", "sqlite", ...).
	Name() string

	Open(ctx context.Context) (Cache, error)

	// Recreate destroys all stored data so that a subsequent Open starts
	// from an empty store.
	Recreate(ctx context.Context) error
}
