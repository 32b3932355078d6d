package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/changetower/internal/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the changelog and registry cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached changelog and registry manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.newApp(cmd.Context(), false)
			if !a.store.Ready() {
				printWarning("Cache backend %q is unavailable, nothing to clear", a.cfg.Store.Backend)
				return nil
			}
			a.fetcher.ClearCache(cmd.Context())
			printSuccess("Cleared the %s cache", a.cfg.Store.Backend)
			printDetail("Location: %s", cacheLocation(a.cfg))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings()
			printKeyValue("backend", cfg.Store.Backend)
			printKeyValue("location", cacheLocation(cfg))
			printKeyValue("visits", filepath.Join(config.CacheDir(), "visits.json"))
			return nil
		},
	}
}

// cacheLocation describes where the configured backend stores data.
// Connection strings are not printed since they may carry credentials.
func cacheLocation(cfg *config.Config) string {
	switch cfg.Store.Backend {
	case "file":
		return filepath.Join(cfg.Store.Dir, "entries")
	case "redis":
		return fmt.Sprintf("redis %s db %d", cfg.Store.RedisAddr, cfg.Store.RedisDB)
	case "mongo":
		db := cfg.Store.MongoDatabase
		if db == "" {
			db = appName
		}
		return "mongo database " + db
	case "none":
		return "disabled"
	default:
		return filepath.Join(cfg.Store.Dir, "cache.db")
	}
}
