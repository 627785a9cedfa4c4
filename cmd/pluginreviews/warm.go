package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/pluginreviews/internal/config"
	"github.com/nao1215/pluginreviews/internal/reviews"
)

// NewWarmCmd creates the warm command.
func NewWarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warm [plugin-slug...]",
		Short: "Fetch the reviews of many plugins into the cache",
		Long: `Warm fetches the reviews of several plugins concurrently and stores them in
the cache, so later renders are served without contacting the catalog.

Without arguments, every plugin listed under sources in the configuration
file is warmed. A plugin that fails does not stop the others.

Examples:
  # Warm the configured plugins
  pluginreviews warm

  # Warm two plugins, re-fetching even if they are cached
  pluginreviews warm awesome-support wordpress-reviews --force`,
		Args: cobra.ArbitraryArgs,
		RunE: runWarmCmd,
	}

	cmd.Flags().IntP("concurrency", "n", config.DefaultWarmConcurrency,
		"Number of plugins fetched at once")
	cmd.Flags().BoolP("force", "f", false,
		"Re-fetch plugins that are already cached")

	return cmd
}

// runWarmCmd executes the warm command.
func runWarmCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.Flags().Changed("concurrency") {
		if a.cfg.WarmConcurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
			return err
		}
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	sourceIDs := args
	if len(sourceIDs) == 0 {
		sourceIDs = a.cfg.File.SourceIDs()
	}
	if len(sourceIDs) == 0 {
		return errNoSources
	}

	ctx, cancel := signalContext(cmd.Context(), a.logger)
	defer cancel()

	w := reviews.NewWarmer(a.gateway,
		reviews.WithConcurrency(a.cfg.WarmConcurrency),
		reviews.WithForceRefresh(force),
		reviews.WithWarmerLogger(a.logger),
	)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Warming %d plugins (concurrency: %d)...\n\n", len(sourceIDs), a.cfg.WarmConcurrency)
	startTime := time.Now()

	var (
		mu     sync.Mutex
		done   int
		failed int
	)
	err = w.WarmWithCallback(ctx, sourceIDs, func(r reviews.WarmResult, _ int) {
		mu.Lock()
		defer mu.Unlock()

		done++
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "[%d/%d] %s: %v\n", done, len(sourceIDs), r.SourceID, r.Err)
			return
		}
		fmt.Fprintf(out, "[%d/%d] %s: %d reviews\n", done, len(sourceIDs), r.SourceID, r.Count)
	})

	fmt.Fprintf(out, "\nWarm completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d plugins could not be fetched", failed, len(sourceIDs))
	}
	return nil
}
