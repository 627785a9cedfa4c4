package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/pluginreviews/internal/reviews"
	"github.com/nao1215/pluginreviews/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered reviews over HTTP",
		Long: `Serve starts an HTTP server that renders plugin reviews on request.

Endpoints:
  GET /reviews?plugin_slug=<slug>&...   HTML fragment (query takes render attributes)
  GET /reviews/{slug}                   HTML fragment for slug
  GET /reviews.json?plugin_slug=<slug>  reviews as JSON
  GET /reviews/{slug}/json              reviews as JSON for slug
  GET /healthz                          liveness probe
  GET /metrics                          Prometheus metrics

Render attributes missing from the query fall back to the configuration file.

Examples:
  # Serve on the default address
  pluginreviews serve

  # Listen on all interfaces and warm the configured plugins first
  pluginreviews serve -l :8080 --warm`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", server.DefaultAddr,
		"Address to listen on")
	cmd.Flags().Duration("request-timeout", server.DefaultRequestTimeout,
		"Maximum time to answer one request")
	cmd.Flags().Bool("warm", false,
		"Fetch the reviews of every configured plugin before serving")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.Flags().Changed("listen") {
		if a.cfg.ListenAddr, err = cmd.Flags().GetString("listen"); err != nil {
			return err
		}
	}
	requestTimeout, err := cmd.Flags().GetDuration("request-timeout")
	if err != nil {
		return err
	}
	warm, err := cmd.Flags().GetBool("warm")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context(), a.logger)
	defer cancel()

	if warm {
		if ids := a.cfg.File.SourceIDs(); len(ids) > 0 {
			w := reviews.NewWarmer(a.gateway,
				reviews.WithConcurrency(a.cfg.WarmConcurrency),
				reviews.WithWarmerLogger(a.logger),
			)
			if _, err := w.Warm(ctx, ids); err != nil {
				return err
			}
		}
	}

	srv := server.New(a.service,
		server.WithLogger(a.logger),
		server.WithDefaults(a.cfg.File.RenderOptions),
		server.WithObserver(a.metrics),
		server.WithMetricsHandler(a.metrics.Handler()),
		server.WithRequestTimeout(requestTimeout),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Serving reviews on http://%s\n", a.cfg.ListenAddr)
	return srv.ListenAndServe(ctx, a.cfg.ListenAddr)
}
