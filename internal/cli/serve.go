package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/devflow/pkg/api"
	"github.com/matzehuels/devflow/pkg/config"
	"github.com/matzehuels/devflow/pkg/observability"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the devflow HTTP API. Every CLI operation is available under /v1 and
returns the same JSON envelope as --json output.

Search-backed endpoints answer 501 until search credentials are configured.`,
		Example: `  devflow serve
  devflow serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, serviceOptions{}, func(ctx context.Context, a *app) error {
				if addr == "" {
					addr = a.cfg.Server.Addr
				}
				if a.svc.Checker == nil {
					c.Logger.Warn("search credentials missing, evidence endpoints disabled",
						"env", config.EnvSearchAPIKey)
				}
				stats := observability.NewStats()
				observability.SetResolverHooks(stats)
				if c.Logger.GetLevel() > log.DebugLevel {
					// Debug runs keep the request logging hooks.
					observability.SetHTTPHooks(stats)
					observability.SetCacheHooks(stats)
				}

				c.Logger.Info("Serving", "addr", addr, "cache", a.cfg.Cache.Backend,
					"history", a.cfg.History.Backend, "pid", os.Getpid())
				return api.New(a.svc, c.Logger, api.WithStats(stats)).ListenAndServe(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+config.EnvHTTPAddr+")")
	return cmd
}
