package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/roomgraph/internal/server"
	"github.com/matzehuels/roomgraph/pkg/observability"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph editing HTTP API",
		Long: `Serve the graph editing HTTP API.

Edits from all clients go through one editor, so concurrent requests never
interleave inside a load, change and save cycle. Prometheus metrics are
exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			metrics := server.NewMetrics()
			observability.SetEditHooks(metrics)
			observability.SetStoreHooks(metrics)
			defer observability.Reset()

			sess, err := c.openSessionWith(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			printInfo("Serving %s store on %s", cfg.Store, StyleHighlight.Render(cfg.Addr))
			return server.New(sess.svc, c.Logger, metrics).ListenAndServe(cmd.Context(), cfg.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	return cmd
}
