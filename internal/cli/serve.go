package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tromp/internal/server"
	"github.com/matzehuels/tromp/pkg/cache"
	"github.com/matzehuels/tromp/pkg/pipeline"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Start the HTTP API. Routes:

  GET  /healthz
  GET  /version
  POST /v1/render
  GET  /v1/render.{format}?expr=...
  GET  /v1/fixtures
  GET  /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if addr == "" {
				addr = cfg.Addr
			}
			if timeout <= 0 {
				timeout = cfg.RenderTimeout.Duration
			}

			ctx := cmd.Context()
			store := c.newCache(ctx, noCache)
			runner := pipeline.NewRunner(store, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:"), c.Logger)
			defer runner.Close()

			srv := server.New(server.Options{
				Runner:        runner,
				Defaults:      c.Config.PipelineOptions(),
				RenderTimeout: timeout,
				Metrics:       server.NewMetrics(),
				Logger:        c.Logger,
			})
			c.out().success("Serving on %s", addr)
			return srv.ListenAndServe(ctx, addr, cfg.ReadTimeout.Duration, cfg.WriteTimeout.Duration)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request render timeout")

	return cmd
}
