package cli

import (
	"sync"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/ensemblops/admin"
	"github.com/jonwraymond/ensemblops/auth"
	"github.com/jonwraymond/ensemblops/health"
	"github.com/jonwraymond/ensemblops/observe"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin server",
		Long: `Run the admin HTTP server: health probes, Prometheus metrics, cache and
release management, and a GET passthrough to the upstream. The server stops
gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if addr != "" {
				c.cfg.Admin.Addr = addr
			}
			ctx := cmd.Context()

			rt, err := c.newRuntime(ctx)
			if err != nil {
				return err
			}
			defer func() { err = joinClose(err, rt.close(ctx)) }()

			authn, err := auth.New(c.cfg.AuthConfig())
			if err != nil {
				return err
			}
			if authn == nil {
				rt.logger.Warn(ctx, "admin.auth_disabled",
					observe.F("addr", c.cfg.Admin.Addr))
			}

			agg := health.NewAggregator()
			agg.Register(health.NewUpstreamChecker(rt.client))
			agg.Register(health.NewReleaseChecker(rt.client))
			agg.Register(health.NewCacheChecker(rt.client, health.CacheCheckerConfig{
				MinHitRate: c.cfg.Admin.MinHitRate,
			}))

			handlers := &admin.Handlers{
				Client:        rt.client,
				Health:        agg,
				Authenticator: authn,
				Gatherer:      rt.registry,
				Logger:        rt.logger,
			}

			// Resolve the release up front so the first cached responses
			// land in the right scope.
			var warm sync.WaitGroup
			warm.Go(func() { rt.client.Release(ctx) })
			defer warm.Wait()

			srv := admin.NewServer(handlers.Routes(), admin.ServerConfig{
				Addr:            c.cfg.Admin.Addr,
				ShutdownTimeout: c.cfg.Admin.ShutdownTimeout.D(),
				Logger:          rt.logger,
			})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides admin.addr)")
	return cmd
}
