package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/deeptime/internal/server"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve snapshots, artifacts and saved views over HTTP",
		Example: `  deeptime serve --addr :8080
  curl 'localhost:8080/api/v1/snapshot?start=252&end=66&format=svg'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg := c.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			c.Logger.Info("session store ready", "backend", cfg.Session.Backend)
			return server.New(runner, store, cfg, c.Logger).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
