package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/changetower/pkg/observability"
)

// DefaultMemorySize is the default capacity of [Memory].
const DefaultMemorySize = 500

// MemoryEntry is a cached lookup result. Found is false for documents
// known not to exist upstream.
type MemoryEntry struct {
	Content string
	Found   bool
}

// Memory is a bounded in-memory changelog cache keyed "{pkg}:{branch}".
// Reads use Peek so they never refresh recency: the entry evicted when the
// cache is full is the one inserted longest ago. Safe for concurrent use.
type Memory struct {
	entries *lru.Cache[string, MemoryEntry]
}

// NewMemory creates a cache holding at most size entries. A size below 1
// uses [DefaultMemorySize].
func NewMemory(size int) *Memory {
	if size < 1 {
		size = DefaultMemorySize
	}
	// lru.New only fails for non-positive sizes.
	entries, _ := lru.New[string, MemoryEntry](size)
	return &Memory{entries: entries}
}

// MemoryKey returns the key for a package changelog on a branch.
func MemoryKey(pkg, branch string) string {
	return pkg + ":" + branch
}

// Get returns the cached entry and whether one was present.
func (m *Memory) Get(ctx context.Context, key string) (MemoryEntry, bool) {
	e, ok := m.entries.Peek(key)
	if ok {
		observability.Cache().OnCacheHit(ctx, "memory")
	} else {
		observability.Cache().OnCacheMiss(ctx, "memory")
	}
	return e, ok
}

// Set stores an entry.
func (m *Memory) Set(ctx context.Context, key string, e MemoryEntry) {
	m.entries.Add(key, e)
	observability.Cache().OnCacheSet(ctx, "memory", len(e.Content))
}

// Len returns the number of cached entries.
func (m *Memory) Len() int { return m.entries.Len() }

// Clear drops every entry.
func (m *Memory) Clear() { m.entries.Purge() }
