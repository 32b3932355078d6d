package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/changetower/pkg/cache"
	"github.com/matzehuels/changetower/pkg/deps"
	"github.com/matzehuels/changetower/pkg/errors"
	"github.com/matzehuels/changetower/pkg/integrations"
	"github.com/matzehuels/changetower/pkg/observability"
)

// ChangelogSource fetches a package's raw changelog. Implementations
// retry transient failures themselves and report a missing document with
// an error wrapping [integrations.ErrNotFound]. [*github.Client]
// implements it.
type ChangelogSource interface {
	FetchChangelog(ctx context.Context, pkg, branch string) (string, error)
}

// Explainer builds dependency trees for a silent release.
// [*deps.TreeBuilder] implements it.
type Explainer interface {
	BuildAll(ctx context.Context, pkg, oldVersion, newVersion string) []*deps.Node
}

// Fetcher loads changelogs through the durable store.
//
// A Fetcher holds no per-call state; multiple goroutines can safely use
// the same Fetcher.
type Fetcher struct {
	source    ChangelogSource
	explainer Explainer
	store     *cache.Store
	memory    *cache.Memory
	opts      Options
	logger    *log.Logger
	now       func() time.Time
}

// NewFetcher creates a Fetcher. A nil store runs uncached; a nil memory
// cache is replaced by a fresh one. memory should be the cache the
// explainer uses so that [Fetcher.ClearCache] empties it.
func NewFetcher(source ChangelogSource, explainer Explainer, store *cache.Store, memory *cache.Memory, opts Options) *Fetcher {
	opts = opts.WithDefaults()
	if store == nil {
		store = cache.NewStore(nil, opts.Logger)
	}
	if memory == nil {
		memory = cache.NewMemory(0)
	}
	return &Fetcher{
		source:    source,
		explainer: explainer,
		store:     store,
		memory:    memory,
		opts:      opts,
		logger:    opts.Logger,
		now:       time.Now,
	}
}

// Options returns the effective options.
func (f *Fetcher) Options() Options { return f.opts }

// StoreReady reports whether results are persisted.
func (f *Fetcher) StoreReady() bool { return f.store.Ready() }

// FetchOne loads the changelog of pkg on branch. Unless force is set, a
// stored copy younger than the branch TTL is returned as is. Fresh content
// is written back to the store on a best-effort basis. FetchOne does not
// enrich.
func (f *Fetcher) FetchOne(ctx context.Context, pkg, branch string, force bool) Result {
	start := time.Now()
	hooks := observability.Fetch()
	hooks.OnFetchStart(ctx, pkg, branch)

	res, err := f.fetchOne(ctx, pkg, branch, force)
	if err != nil {
		res = Result{Module: pkg, Error: errors.UserMessage(err), ErrorCode: errors.GetCode(err)}
		f.logger.Debug("changelog unavailable", "package", pkg, "branch", branch, "err", err)
	}
	hooks.OnFetchComplete(ctx, pkg, branch, res.Cached, time.Since(start), err)
	return res
}

func (f *Fetcher) fetchOne(ctx context.Context, pkg, branch string, force bool) (Result, error) {
	if err := errors.ValidatePackageName(pkg); err != nil {
		return Result{}, err
	}
	if err := errors.ValidateBranch(branch); err != nil {
		return Result{}, err
	}

	key := cache.ChangelogKey(pkg, branch)
	ttl := f.opts.TTL.TTL(branch)

	if !force && f.store.Ready() {
		if rec := f.store.Changelogs().Get(ctx, key); rec != nil && rec.ValidAt(f.now(), ttl) {
			at := rec.Time()
			return Result{Module: pkg, Content: rec.Content, Cached: true, FetchedAt: &at}, nil
		}
	}

	content, err := f.source.FetchChangelog(ctx, pkg, branch)
	if err != nil {
		if stderrors.Is(err, integrations.ErrNotFound) {
			return Result{}, errors.New(errors.ErrCodeChangelogNotFound, "no changelog on %s", branch)
		}
		return Result{}, errors.Wrap(errors.ErrCodeNetwork, err, "fetch failed")
	}

	at := f.now()
	f.store.Changelogs().Set(ctx, cache.NewChangelogRecord(pkg, branch, content, at, ttl))
	return Result{Module: pkg, Content: content, FetchedAt: &at}, nil
}

// FetchMany loads the changelogs of pkgs on branch, in batches of
// [Options.BatchSize]. Batches run one after another with
// [Options.BatchDelay] between them; members of a batch run concurrently.
// onProgress, if not nil, is called before and after every batch.
//
// Successful results are then enriched concurrently. The returned slice
// has one Result per package, in input order.
func (f *Fetcher) FetchMany(ctx context.Context, pkgs []string, branch string, force bool, onProgress ProgressFunc) []Result {
	results := make([]Result, len(pkgs))
	total := len(pkgs)
	report := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	loaded, cached := 0, 0
	for start := 0; start < total; start += f.opts.BatchSize {
		end := min(start+f.opts.BatchSize, total)
		report(Progress{Loaded: loaded, Total: total, Cached: cached, Current: pkgs[start]})

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = f.FetchOne(ctx, pkgs[i], branch, force)
				return nil
			})
		}
		_ = g.Wait()

		for _, r := range results[start:end] {
			loaded++
			if r.Cached {
				cached++
			}
		}
		next := ""
		if end < total {
			next = pkgs[end]
		}
		report(Progress{Loaded: loaded, Total: total, Cached: cached, Current: next})

		if end < total {
			f.pause(ctx)
		}
	}

	f.enrichAll(ctx, results)
	return results
}

func (f *Fetcher) pause(ctx context.Context) {
	if f.opts.BatchDelay <= 0 {
		return
	}
	t := time.NewTimer(f.opts.BatchDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// ClearCache empties the durable store and the dependency changelog cache.
func (f *Fetcher) ClearCache(ctx context.Context) {
	f.store.Clear(ctx)
	f.memory.Clear()
	f.logger.Info("cache cleared")
}
