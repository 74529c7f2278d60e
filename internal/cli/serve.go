package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rulegraph/pkg/buildinfo"
	"github.com/matzehuels/rulegraph/pkg/observability"
	"github.com/matzehuels/rulegraph/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rulesets, analyses and sweeps over HTTP",
		Long: `Run the HTTP API. Rulesets are served under /rulesets/{states}/{rule},
sweeps under /sweeps and Prometheus metrics under /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.conf().Server.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetEngineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	srv := server.New(runner, st, server.Options{
		Pipeline:      c.pipelineOptions(),
		Gatherer:      reg,
		Logger:        c.Logger,
		MaxSweepRules: c.conf().Server.MaxSweepRules,
	})
	c.Logger.Info("starting server", "version", buildinfo.Version, "cache", c.conf().Cache.Backend)
	return srv.ListenAndServe(ctx, addr)
}
