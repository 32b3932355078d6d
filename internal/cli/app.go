package cli

import (
	"context"

	"github.com/matzehuels/changetower/internal/config"
	"github.com/matzehuels/changetower/pkg/cache"
	"github.com/matzehuels/changetower/pkg/deps"
	"github.com/matzehuels/changetower/pkg/integrations"
	"github.com/matzehuels/changetower/pkg/integrations/github"
	"github.com/matzehuels/changetower/pkg/integrations/npm"
	"github.com/matzehuels/changetower/pkg/pipeline"
)

// app is the wired object graph shared by the commands.
type app struct {
	cfg     *config.Config
	store   *cache.Store
	memory  *cache.Memory
	trees   *deps.TreeBuilder
	fetcher *pipeline.Fetcher
	loader  *pipeline.Loader
}

// newApp opens the store and wires the clients, the comparer, the tree
// builder and the pipeline. With noCache the durable store is skipped.
func (c *CLI) newApp(ctx context.Context, noCache bool) *app {
	cfg := c.settings()
	logger := c.Logger

	store := cache.NewStore(nil, logger)
	if !noCache {
		store = cache.OpenStore(ctx, cfg.Opener(), logger)
		c.closers = append(c.closers, store)
	}
	memory := cache.NewMemory(cfg.Fetch.MemoryCacheSize)

	httpClient := integrations.NewClient(integrations.Options{
		Gate:   cfg.Gate(),
		Retry:  cfg.RetryOptions(),
		Logger: logger,
	})
	source := github.NewClient(httpClient, cfg.Sources.ChangelogBaseURL)
	registry := npm.NewClient(httpClient, cfg.Sources.RegistryBaseURL)

	comparer := deps.NewComparer(registry, store, logger)
	trees := deps.NewTreeBuilder(source, comparer, memory, logger)

	opts := cfg.PipelineOptions(logger)
	fetcher := pipeline.NewFetcher(source, trees, store, memory, opts)

	return &app{
		cfg:     cfg,
		store:   store,
		memory:  memory,
		trees:   trees,
		fetcher: fetcher,
		loader:  pipeline.NewLoader(fetcher, opts),
	}
}
