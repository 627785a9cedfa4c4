package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRefreshCmd creates the refresh command.
func NewRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <plugin-slug>",
		Short: "Drop the cached reviews of a plugin and fetch them again",
		Long: `Refresh removes the cached reviews of a plugin and fetches them from the
catalog right away. If the fetch fails, the plugin stays uncached.

Example:
  pluginreviews refresh awesome-support`,
		Args: cobra.ExactArgs(1),
		RunE: runRefreshCmd,
	}
}

// runRefreshCmd executes the refresh command.
func runRefreshCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(cmd.Context(), a.logger)
	defer cancel()

	sourceID := args[0]
	if err := a.gateway.Invalidate(ctx, sourceID); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", sourceID, err)
	}

	records, err := a.gateway.Refresh(ctx, sourceID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Refreshed %s: %d reviews\n", sourceID, len(records))
	return nil
}
