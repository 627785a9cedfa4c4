package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/pluginreviews/internal/config"
)

// NewRootCmd creates the root command for pluginreviews.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pluginreviews",
		Short: "Render WordPress.org plugin reviews as embeddable HTML",
		Long: `pluginreviews fetches the reviews of a WordPress.org plugin, caches them and
renders them as an HTML fragment ready to embed in a page.

Reviews can be filtered by rating, sorted by date or rating and limited.
The markup of each review, the link labels and the fallback message are
configurable in the .pluginreviews configuration file (see "pluginreviews init").`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.Bool("json-logs", false, "Write logs as JSON")
	flags.StringP("config", "c", "",
		"Configuration file path (default: .pluginreviews in current or home directory)")
	flags.String("cache", config.DefaultCacheBackend,
		"Cache backend: memory, sqlite or redis")
	flags.Duration("cache-ttl", config.DefaultCacheTTL,
		"How long fetched reviews stay cached")
	flags.String("redis-addr", config.DefaultRedisAddr,
		"Redis address used by the redis cache backend")
	flags.String("proxy", "",
		"Fetch reviews through a SOCKS5 proxy at host:port")
	flags.DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request to the plugin catalog")
	flags.String("base-url", "",
		"Plugin information API endpoint (default: WordPress.org)")

	// Add subcommands
	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewWarmCmd())
	cmd.AddCommand(NewRefreshCmd())
	cmd.AddCommand(NewPurgeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
