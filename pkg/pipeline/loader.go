package pipeline

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/changetower/pkg/errors"
)

// Batcher is the part of [*Fetcher] a [Loader] needs.
type Batcher interface {
	FetchMany(ctx context.Context, pkgs []string, branch string, force bool, onProgress ProgressFunc) []Result
	ClearCache(ctx context.Context)
}

// State is the changelog set a [Loader] currently presents.
type State struct {
	Branch    string   `json:"branch,omitempty"`
	Results   []Result `json:"changelogs"`
	Errors    []string `json:"errors"`
	Loading   bool     `json:"loading"`
	Progress  Progress `json:"progress"`
	RequestID string   `json:"requestId,omitempty"`
}

// Modules returns the module names of the loaded results, in order.
func (s State) Modules() []string {
	names := make([]string, len(s.Results))
	for i, r := range s.Results {
		names[i] = r.Module
	}
	return names
}

func (s State) clone() State {
	s.Results = slices.Clone(s.Results)
	s.Errors = slices.Clone(s.Errors)
	return s
}

// Outcome describes what a [Loader.Load] call did.
type Outcome struct {
	RequestID   string   `json:"requestId"`
	Fetched     []string `json:"fetched"`
	Incremental bool     `json:"incremental"`
	Stale       bool     `json:"stale"`
	State       State    `json:"state"`
}

// Loader keeps the result of the latest load for interactive callers.
//
// Every Load gets a request id and a generation number. Loads are never
// cancelled; a load whose generation is no longer the newest when it
// finishes is discarded instead of applied. A load whose ctx ends before
// it finishes is discarded too and the state before it is put back.
type Loader struct {
	fetcher Batcher
	minLoad time.Duration
	logger  *log.Logger

	gen   atomic.Uint64
	mu    sync.Mutex
	state State
}

// NewLoader creates a Loader on top of fetcher. Only MinLoadTime and
// Logger of opts are used.
func NewLoader(fetcher Batcher, opts Options) *Loader {
	opts = opts.WithDefaults()
	return &Loader{
		fetcher: fetcher,
		minLoad: opts.MinLoadTime,
		logger:  opts.Logger,
		state:   State{Results: []Result{}, Errors: []string{}},
	}
}

// State returns a snapshot of the current state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

// Load fetches modules on branch and applies the results.
//
// Without force, a load on the loaded branch that adds modules fetches
// only the added ones and puts them in front of the kept results. Any
// other load fetches every module and replaces the state, newly selected
// modules first. Failed modules are reported as "module: error".
func (l *Loader) Load(ctx context.Context, modules []string, branch string, force bool, onProgress ProgressFunc) (Outcome, error) {
	modules = dedupe(modules)
	if len(modules) == 0 {
		return Outcome{}, errors.New(errors.ErrCodeInvalidInput, "select at least one module")
	}

	id := uuid.NewString()
	gen := l.gen.Add(1)
	logger := l.logger.With("request", id)

	l.mu.Lock()
	prev := l.state.clone()
	l.state.Loading = true
	l.state.RequestID = id
	if force {
		l.state.Results = []Result{}
		l.state.Errors = []string{}
	}
	loaded := make(map[string]bool, len(prev.Results))
	if prev.Branch == branch {
		for _, r := range prev.Results {
			loaded[r.Module] = true
		}
	}
	var added []string
	for _, m := range modules {
		if !loaded[m] {
			added = append(added, m)
		}
	}
	toFetch := modules
	if !force && len(added) > 0 {
		toFetch = added
	}
	incremental := !force && len(added) > 0 && len(loaded) > 0
	l.state.Progress = Progress{Total: len(toFetch)}
	l.mu.Unlock()

	logger.Debug("load started", "modules", len(modules), "fetching", len(toFetch), "incremental", incremental, "force", force)

	progress := func(p Progress) {
		l.mu.Lock()
		if l.gen.Load() == gen {
			l.state.Progress = p
		}
		l.mu.Unlock()
		if onProgress != nil {
			onProgress(p)
		}
	}

	padding := time.NewTimer(l.minLoad)
	defer padding.Stop()
	results := l.fetcher.FetchMany(ctx, toFetch, branch, force, progress)
	select {
	case <-padding.C:
	case <-ctx.Done():
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out := Outcome{RequestID: id, Fetched: toFetch, Incremental: incremental}
	if l.gen.Load() != gen {
		logger.Debug("discarding stale load results")
		out.Stale = true
		out.State = l.state.clone()
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		logger.Debug("discarding interrupted load results", "error", err)
		l.state = prev
		l.state.Loading = false
		l.state.RequestID = ""
		out.Stale = true
		out.State = l.state.clone()
		return out, nil
	}

	var ok []Result
	var failed []string
	for _, r := range results {
		if r.OK() {
			ok = append(ok, r)
		} else {
			failed = append(failed, r.Module+": "+r.Error)
		}
	}

	if incremental {
		fresh := make(map[string]bool, len(ok))
		for _, r := range ok {
			fresh[r.Module] = true
		}
		merged := slices.Clone(ok)
		for _, r := range l.state.Results {
			if !fresh[r.Module] && slices.Contains(modules, r.Module) {
				merged = append(merged, r)
			}
		}
		l.state.Results = merged
		kept := keepErrorsFor(l.state.Errors, modules)
		l.state.Errors = append(dropErrorsFor(kept, toFetch), failed...)
	} else {
		isNew := make(map[string]bool, len(added))
		for _, m := range added {
			isNew[m] = true
		}
		slices.SortStableFunc(ok, func(a, b Result) int {
			switch {
			case isNew[a.Module] && !isNew[b.Module]:
				return -1
			case !isNew[a.Module] && isNew[b.Module]:
				return 1
			}
			return 0
		})
		l.state.Results = ok
		l.state.Errors = failed
	}
	if l.state.Results == nil {
		l.state.Results = []Result{}
	}
	if l.state.Errors == nil {
		l.state.Errors = []string{}
	}
	l.state.Branch = branch
	l.state.Loading = false
	l.state.RequestID = ""

	logger.Info("load finished", "loaded", len(ok), "failed", len(failed))
	out.State = l.state.clone()
	return out, nil
}

// ClearCache empties the fetcher's caches and forgets the loaded state.
func (l *Loader) ClearCache(ctx context.Context) {
	l.fetcher.ClearCache(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Results = []Result{}
	l.state.Errors = []string{}
	l.state.Branch = ""
}

// dropErrorsFor removes the "module: error" entries of modules.
func dropErrorsFor(errs []string, modules []string) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		module, _, _ := strings.Cut(e, ": ")
		if !slices.Contains(modules, module) {
			out = append(out, e)
		}
	}
	return out
}

// keepErrorsFor keeps only the "module: error" entries of modules.
func keepErrorsFor(errs []string, modules []string) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		module, _, _ := strings.Cut(e, ": ")
		if slices.Contains(modules, module) {
			out = append(out, e)
		}
	}
	return out
}

func dedupe(modules []string) []string {
	seen := make(map[string]bool, len(modules))
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
