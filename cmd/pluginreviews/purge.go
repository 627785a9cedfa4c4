package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/pluginreviews/internal/cache"
)

// NewPurgeCmd creates the purge command.
func NewPurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove expired entries from the cache",
		Long: `Purge deletes expired review lists from the SQLite cache database.
Expired entries are never served, but stay on disk until purged.

The memory and redis backends expire entries on their own.

Examples:
  # Remove expired entries
  pluginreviews purge

  # Show the remaining entries afterwards
  pluginreviews purge --list`,
		Args: cobra.NoArgs,
		RunE: runPurgeCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List the remaining cache entries")

	return cmd
}

// runPurgeCmd executes the purge command.
func runPurgeCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context(), a.logger)
	defer cancel()

	out := cmd.OutOrStdout()
	removed, err := cache.Purge(ctx, a.store)
	if errors.Is(err, cache.ErrPurgeUnsupported) {
		fmt.Fprintf(out, "The %s cache backend expires entries on its own.\n", a.cfg.CacheBackend)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %d expired entries\n", removed)

	sqlite, ok := a.store.Unwrap().(*cache.SQLiteStore)
	if !list || !ok {
		return nil
	}

	entries, err := sqlite.Entries(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d entries in %s\n", len(entries), sqlite.Path())
	for _, e := range entries {
		expires := "never"
		if !e.ExpiresAt.IsZero() {
			expires = e.ExpiresAt.Format(time.RFC3339)
		}
		fmt.Fprintf(out, "  %s  %6d bytes  expires %s\n", e.Key, e.Size, expires)
	}
	return nil
}
