package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/changetower/pkg/changelog"
	"github.com/matzehuels/changetower/pkg/observability"
)

// enrichAll enriches every successful result in place, all packages
// concurrently. A failing package keeps its result without versions.
func (f *Fetcher) enrichAll(ctx context.Context, results []Result) {
	var g errgroup.Group
	for i := range results {
		r := &results[i]
		if !r.OK() || r.Content == "" {
			continue
		}
		g.Go(func() error {
			versions, err := f.Enrich(ctx, r.Module, r.Content)
			if err != nil {
				f.logger.Warn("enrichment failed", "package", r.Module, "err", err)
				return nil
			}
			r.Versions = versions
			return nil
		})
	}
	_ = g.Wait()
}

// Enrich parses content into versions and attaches dependency trees to
// every no-user-facing-changes version that has a predecessor. Versions
// are explained concurrently; the result keeps the changelog's order.
func (f *Fetcher) Enrich(ctx context.Context, pkg, content string) ([]EnrichedVersion, error) {
	start := time.Now()
	versions := changelog.Parse(content)
	out := make([]EnrichedVersion, len(versions))

	var g errgroup.Group
	silent := 0
	for i, v := range versions {
		out[i].Version = v
		if !changelog.IsNoChange(v.Content) {
			continue
		}
		prev, ok := changelog.PreviousVersion(versions, v.Version)
		if !ok {
			continue
		}
		silent++
		g.Go(func() error {
			if trees := f.explainer.BuildAll(ctx, pkg, prev, v.Version); len(trees) > 0 {
				out[i].DependencyTrees = trees
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trees := 0
	for _, v := range out {
		trees += len(v.DependencyTrees)
	}
	observability.Fetch().OnEnrich(ctx, pkg, silent, trees, time.Since(start))
	return out, nil
}
