package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/changetower/internal/server"
)

// serveCommand creates the serve command running the JSON API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the changelog API over HTTP",
		Long: `Serve the JSON API used by web front ends: load changelogs, read the
current selection, explain version bumps and clear the cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := c.newApp(ctx, false)
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := server.New(server.Options{
				Loader:        a.loader,
				Explainer:     a.trees,
				DefaultBranch: a.cfg.Branch,
				StoreReady:    a.store.Ready,
				Logger:        loggerFromContext(ctx).WithPrefix("api"),
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, then :8080)")
	return cmd
}
