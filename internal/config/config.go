// Package config loads changetower settings from TOML or YAML files.
//
// Lookup order for the file is the --config flag, then the
// CHANGETOWER_CONFIG environment variable, then
// $XDG_CONFIG_HOME/changetower/config.toml. A missing default file is not
// an error; every setting has a default.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/changetower/pkg/catalog"
	"github.com/matzehuels/changetower/pkg/errors"
	"github.com/matzehuels/changetower/pkg/integrations/github"
	"github.com/matzehuels/changetower/pkg/integrations/npm"
)

// EnvConfigPath names the environment variable holding the config path.
const EnvConfigPath = "CHANGETOWER_CONFIG"

const appName = "changetower"

const (
	DefaultBackend         = "sqlite"
	DefaultMongoDatabase   = "changetower"
	DefaultBatchSize       = 10
	DefaultBatchDelay      = 100 * time.Millisecond
	DefaultConcurrency     = 10
	DefaultMinLoadTime     = time.Second
	DefaultMemoryCacheSize = 500
	DefaultMaxRetries      = 3
	DefaultInitialDelay    = time.Second
	DefaultMaxDelay        = 30 * time.Second
	DefaultMultiplier      = 2.0
	DefaultLogLevel        = "info"
	DefaultLogMaxSizeMB    = 10
	DefaultLogMaxBackups   = 3
	DefaultServerAddr      = ":8080"
)

// Config holds every setting. Durations are written as Go duration
// strings ("100ms", "1h").
type Config struct {
	Branch    string   `toml:"branch" yaml:"branch" validate:"branch"`
	LatestSDK int      `toml:"latest_sdk" yaml:"latest_sdk" validate:"gt=0"`
	Packages  []string `toml:"packages" yaml:"packages" validate:"dive,package"`

	Store   StoreConfig   `toml:"store" yaml:"store"`
	Fetch   FetchConfig   `toml:"fetch" yaml:"fetch"`
	Retry   RetryConfig   `toml:"retry" yaml:"retry"`
	Sources SourcesConfig `toml:"sources" yaml:"sources"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
}

// StoreConfig selects and configures the durable cache backend.
type StoreConfig struct {
	Backend       string `toml:"backend" yaml:"backend" validate:"oneof=sqlite file redis mongo none"`
	Dir           string `toml:"dir" yaml:"dir" validate:"required_if=Backend sqlite,required_if=Backend file"`
	RedisAddr     string `toml:"redis_addr" yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int    `toml:"redis_db" yaml:"redis_db" validate:"gte=0"`
	MongoURI      string `toml:"mongo_uri" yaml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string `toml:"mongo_database" yaml:"mongo_database"`
}

// FetchConfig tunes batching and request concurrency.
type FetchConfig struct {
	BatchSize       int           `toml:"batch_size" yaml:"batch_size" validate:"gt=0"`
	BatchDelay      time.Duration `toml:"batch_delay" yaml:"batch_delay" validate:"gte=0"`
	Concurrency     int           `toml:"concurrency" yaml:"concurrency" validate:"gt=0"`
	RequestDelay    time.Duration `toml:"request_delay" yaml:"request_delay" validate:"gte=0"`
	MinLoadTime     time.Duration `toml:"min_load_time" yaml:"min_load_time" validate:"gte=0"`
	MemoryCacheSize int           `toml:"memory_cache_size" yaml:"memory_cache_size" validate:"gt=0"`
}

// RetryConfig tunes backoff for upstream requests. MaxRetries -1 disables
// retrying.
type RetryConfig struct {
	MaxRetries   int           `toml:"max_retries" yaml:"max_retries" validate:"gte=-1"`
	InitialDelay time.Duration `toml:"initial_delay" yaml:"initial_delay" validate:"gt=0"`
	MaxDelay     time.Duration `toml:"max_delay" yaml:"max_delay" validate:"gtefield=InitialDelay"`
	Multiplier   float64       `toml:"multiplier" yaml:"multiplier" validate:"gte=1"`
}

// SourcesConfig overrides the upstream base URLs.
type SourcesConfig struct {
	ChangelogBaseURL string `toml:"changelog_base_url" yaml:"changelog_base_url" validate:"url"`
	RegistryBaseURL  string `toml:"registry_base_url" yaml:"registry_base_url" validate:"url"`
}

// LogConfig configures logging. File enables a rotated log file.
type LogConfig struct {
	Level      string `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb" validate:"gt=0"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups" validate:"gte=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr" validate:"required"`
}

// Default returns the configuration used without a config file.
func Default() *Config {
	c := &Config{}
	c.WithDefaults()
	return c
}

// WithDefaults fills every zero setting with its default, in place.
func (c *Config) WithDefaults() *Config {
	setDefault(&c.Branch, catalog.DefaultBranch())
	setDefault(&c.LatestSDK, catalog.LatestSDK)

	setDefault(&c.Store.Backend, DefaultBackend)
	setDefault(&c.Store.Dir, CacheDir())
	setDefault(&c.Store.MongoDatabase, DefaultMongoDatabase)

	setDefault(&c.Fetch.BatchSize, DefaultBatchSize)
	setDefault(&c.Fetch.BatchDelay, DefaultBatchDelay)
	setDefault(&c.Fetch.Concurrency, DefaultConcurrency)
	setDefault(&c.Fetch.MinLoadTime, DefaultMinLoadTime)
	setDefault(&c.Fetch.MemoryCacheSize, DefaultMemoryCacheSize)

	setDefault(&c.Retry.MaxRetries, DefaultMaxRetries)
	setDefault(&c.Retry.InitialDelay, DefaultInitialDelay)
	setDefault(&c.Retry.MaxDelay, DefaultMaxDelay)
	setDefault(&c.Retry.Multiplier, DefaultMultiplier)

	setDefault(&c.Sources.ChangelogBaseURL, github.DefaultBaseURL)
	setDefault(&c.Sources.RegistryBaseURL, npm.DefaultBaseURL)

	setDefault(&c.Log.Level, DefaultLogLevel)
	setDefault(&c.Log.MaxSizeMB, DefaultLogMaxSizeMB)
	setDefault(&c.Log.MaxBackups, DefaultLogMaxBackups)

	setDefault(&c.Server.Addr, DefaultServerAddr)
	return c
}

func setDefault[T comparable](v *T, def T) {
	var zero T
	if *v == zero {
		*v = def
	}
}

// Path resolves the config file to load. flag wins, then the environment,
// then the default location if a file exists there. An empty result means
// no file.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	p := filepath.Join(ConfigDir(), "config.toml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// Load reads the file at path over the defaults and validates the result.
// An empty path yields [Default]. Files ending in .yaml or .yml are YAML;
// anything else is TOML.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
		}
		if err := decode(path, data, c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", filepath.Base(path))
		}
	}
	c.WithDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decode(path string, data []byte, c *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	default:
		_, err := toml.Decode(string(data), c)
		return err
	}
}

// ConfigDir returns the config directory following the XDG standard
// (~/.config/changetower/).
func ConfigDir() string {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".config", appName)
}

// CacheDir returns the cache directory following the XDG standard
// (~/.cache/changetower/).
func CacheDir() string {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}
