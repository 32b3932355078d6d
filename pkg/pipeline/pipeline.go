// Package pipeline loads changelogs for many packages at once.
//
// This package implements the fetch → cache → enrich flow shared by the
// CLI and the HTTP API. By centralizing it, both entry points apply the
// same TTL policy, batching and race handling.
//
// # Architecture
//
//  1. [Fetcher.FetchOne] reads one changelog from the durable store when
//     it is still fresh for its branch ([TTLPolicy]), otherwise fetches it
//     (with retry) and writes it back.
//  2. [Fetcher.FetchMany] runs FetchOne in fixed-size concurrent batches
//     with a pause between batches and reports [Progress].
//  3. Every successful result is enriched: versions carrying the
//     no-user-facing-changes marker get dependency trees explaining them.
//  4. [Loader] sits on top for interactive callers. It merges incremental
//     loads and discards results of loads superseded by a newer one.
//
// # Usage
//
//	f := pipeline.NewFetcher(source, trees, store, memory, pipeline.Options{})
//	results := f.FetchMany(ctx, []string{"expo-camera", "expo-av"}, "sdk-54", false, nil)
//	for _, r := range results {
//	    if r.Error != "" {
//	        fmt.Println(r.Module, r.Error)
//	    }
//	}
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/changetower/pkg/changelog"
	"github.com/matzehuels/changetower/pkg/deps"
	"github.com/matzehuels/changetower/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultBatchSize is the number of packages fetched concurrently.
	DefaultBatchSize = 10

	// DefaultBatchDelay is the pause between two batches.
	DefaultBatchDelay = 100 * time.Millisecond

	// DefaultMinLoadTime is the shortest duration of a [Loader.Load], so
	// progress stays visible for loads served from cache.
	DefaultMinLoadTime = time.Second
)

// =============================================================================
// Options
// =============================================================================

// Options configures a [Fetcher] and a [Loader]. Zero values mean defaults;
// a negative BatchDelay or MinLoadTime disables the pause.
type Options struct {
	BatchSize   int
	BatchDelay  time.Duration
	MinLoadTime time.Duration
	TTL         TTLPolicy
	Logger      *log.Logger
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	switch {
	case o.BatchDelay == 0:
		o.BatchDelay = DefaultBatchDelay
	case o.BatchDelay < 0:
		o.BatchDelay = 0
	}
	switch {
	case o.MinLoadTime == 0:
		o.MinLoadTime = DefaultMinLoadTime
	case o.MinLoadTime < 0:
		o.MinLoadTime = 0
	}
	o.TTL = o.TTL.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// =============================================================================
// Results
// =============================================================================

// EnrichedVersion is a parsed changelog version plus, for silent releases,
// the dependency trees explaining it.
type EnrichedVersion struct {
	changelog.Version
	DependencyTrees []*deps.Node `json:"dependencyTrees,omitempty"`
}

// Result is the outcome of loading one package's changelog. Failures are
// reported in Error, never as a Go error.
type Result struct {
	Module    string            `json:"module"`
	Content   string            `json:"content"`
	Cached    bool              `json:"cached"`
	FetchedAt *time.Time        `json:"fetchedAt,omitempty"`
	Error     string            `json:"error,omitempty"`
	ErrorCode errors.Code       `json:"errorCode,omitempty"`
	Versions  []EnrichedVersion `json:"versions,omitempty"`
}

// OK reports whether the changelog was loaded.
func (r Result) OK() bool { return r.Error == "" }

// Progress describes how far a [Fetcher.FetchMany] call has come. Current
// is the first package of the batch about to run, empty when done.
type Progress struct {
	Loaded  int    `json:"loaded"`
	Total   int    `json:"total"`
	Cached  int    `json:"cached"`
	Current string `json:"current,omitempty"`
}

// ProgressFunc receives progress updates. It is called from the goroutine
// running FetchMany.
type ProgressFunc func(Progress)
