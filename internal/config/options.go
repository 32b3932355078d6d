package config

import (
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/changetower/pkg/cache"
	"github.com/matzehuels/changetower/pkg/httputil"
	"github.com/matzehuels/changetower/pkg/pipeline"
)

// RetryOptions converts the retry section.
func (c *Config) RetryOptions() httputil.RetryOptions {
	return httputil.RetryOptions{
		MaxRetries:   c.Retry.MaxRetries,
		InitialDelay: c.Retry.InitialDelay,
		MaxDelay:     c.Retry.MaxDelay,
		Multiplier:   c.Retry.Multiplier,
	}
}

// PipelineOptions converts the fetch section and the TTL settings.
func (c *Config) PipelineOptions(logger *log.Logger) pipeline.Options {
	return pipeline.Options{
		BatchSize:   c.Fetch.BatchSize,
		BatchDelay:  c.Fetch.BatchDelay,
		MinLoadTime: c.Fetch.MinLoadTime,
		TTL:         pipeline.TTLPolicy{LatestSDK: c.LatestSDK}.WithDefaults(),
		Logger:      logger,
	}
}

// Gate returns the request gate for upstream traffic.
func (c *Config) Gate() *httputil.Gate {
	return httputil.NewGate(c.Fetch.Concurrency, c.Fetch.RequestDelay)
}

// Opener returns the backend opener selected by the store section.
func (c *Config) Opener() cache.Opener {
	switch c.Store.Backend {
	case "file":
		return cache.FileBackend(filepath.Join(c.Store.Dir, "entries"))
	case "redis":
		return cache.RedisBackend(cache.RedisOptions{
			Addr:     c.Store.RedisAddr,
			Password: c.Store.RedisPassword,
			DB:       c.Store.RedisDB,
		})
	case "mongo":
		return cache.MongoBackend(cache.MongoOptions{
			URI:      c.Store.MongoURI,
			Database: c.Store.MongoDatabase,
		})
	case "none":
		return cache.NullBackend()
	default:
		return cache.SQLiteBackend(filepath.Join(c.Store.Dir, "cache.db"))
	}
}
