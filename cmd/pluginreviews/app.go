package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/pluginreviews/internal/cache"
	"github.com/nao1215/pluginreviews/internal/config"
	"github.com/nao1215/pluginreviews/internal/format"
	"github.com/nao1215/pluginreviews/internal/log"
	"github.com/nao1215/pluginreviews/internal/metrics"
	"github.com/nao1215/pluginreviews/internal/pipeline"
	"github.com/nao1215/pluginreviews/internal/reviews"
	"github.com/nao1215/pluginreviews/internal/source"
)

// redisPingTimeout bounds the reachability check of the Redis backend.
const redisPingTimeout = 5 * time.Second

// app holds the components shared by the review commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	store   *cache.Instrumented
	gateway *cache.Gateway
	service *reviews.Service
}

// newApp builds the configuration from cmd and wires the cache, the
// catalog client and the render service. Call Close when done.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	m := metrics.New()

	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	instrumented := cache.Instrument(store, cfg.CacheBackend, m)

	client, err := newSourceClient(cfg, logger, m)
	if err != nil {
		_ = instrumented.Close() //nolint:errcheck // Best effort cleanup
		return nil, err
	}

	formatter, err := newFormatter(cfg.File)
	if err != nil {
		_ = instrumented.Close() //nolint:errcheck // Best effort cleanup
		return nil, err
	}

	gateway := cache.NewGateway(instrumented, client,
		cache.WithTTL(cfg.CacheTTL),
		cache.WithLogger(logger),
	)

	service := reviews.NewService(gateway,
		reviews.WithFormatter(formatter),
		reviews.WithLinks(newLinks(cfg.File.Labels)),
		reviews.WithFallbackMessage(cfg.File.Labels.Fallback),
		reviews.WithLogger(logger),
		reviews.WithObserver(m),
	)

	logger.Debug("configuration loaded",
		"config", cfg.ConfigFilePath,
		"cache", cfg.CacheBackend,
		"cacheTTL", cfg.CacheTTL,
		"baseURL", cfg.BaseURL,
		"proxy", cfg.ProxyAddress,
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		store:   instrumented,
		gateway: gateway,
		service: service,
	}, nil
}

// Close releases the cache store.
func (a *app) Close() error {
	return a.store.Close()
}

// buildConfig creates a Config from defaults, the configuration file, the
// environment and the command line flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
		cfg.ConfigFilePath = configPath
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if err := config.LoadEnvFiles(".env", filepath.Join(config.XDGConfigDir(), ".env")); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies the explicitly set global flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	var err error
	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return err
	}
	if cfg.JSONLogs, err = flags.GetBool("json-logs"); err != nil {
		return err
	}

	if flags.Changed("cache") {
		if cfg.CacheBackend, err = flags.GetString("cache"); err != nil {
			return err
		}
	}
	if flags.Changed("cache-ttl") {
		if cfg.CacheTTL, err = flags.GetDuration("cache-ttl"); err != nil {
			return err
		}
	}
	if flags.Changed("redis-addr") {
		if cfg.RedisAddr, err = flags.GetString("redis-addr"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return err
		}
	}
	return nil
}

// setupLogger creates a structured logger that masks credentials.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.JSONLogs {
		return log.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return log.NewSecureLogger(w, cfg.Verbose)
}

// openStore opens the configured cache backend.
func openStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case config.CacheMemory:
		return cache.NewMemoryStore(), nil
	case config.CacheRedis:
		store := cache.NewRedisStore(cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if ctx == nil {
			ctx = context.Background()
		}
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = store.Close() //nolint:errcheck // Best effort cleanup
			return nil, fmt.Errorf("redis cache at %s is unreachable: %w", cfg.RedisAddr, err)
		}
		return store, nil
	default:
		store, err := cache.OpenSQLite(cfg.CacheDir, cache.DefaultSQLiteOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		return store, nil
	}
}

// newSourceClient creates the plugin catalog client.
func newSourceClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*source.Client, error) {
	opts := []source.Option{
		source.WithBaseURL(cfg.BaseURL),
		source.WithTimeout(cfg.Timeout),
		source.WithUserAgent(cfg.UserAgent),
		source.WithMaxBodySize(cfg.MaxBodySize),
		source.WithRateLimit(cfg.RateLimit, 1),
		source.WithMaxRetries(cfg.MaxRetries),
		source.WithLogger(logger),
		source.WithObserver(m),
	}

	if cfg.ProxyAddress != "" {
		hc, err := source.NewProxyHTTPClient(source.ProxyConfig{
			Address:  cfg.ProxyAddress,
			Username: cfg.ProxyUsername,
			Password: cfg.ProxyPassword,
		}, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to configure proxy: %w", err)
		}
		opts = append(opts, source.WithHTTPClient(hc))
		logger.Info("fetching through proxy", "address", cfg.ProxyAddress)
	}

	return source.NewClient(opts...), nil
}

// newFormatter creates the review formatter from the configured markup.
func newFormatter(cf *config.File) (*format.Formatter, error) {
	markup, err := cf.LoadTemplate()
	if err != nil {
		return nil, err
	}

	opts := []format.Option{format.WithReadMoreLabel(cf.Labels.ReadMore)}
	if markup != "" {
		opts = append(opts, format.WithTemplate(format.NewTemplate(markup)))
	}
	return format.New(opts...), nil
}

// newLinks applies the configured labels over the catalog defaults.
func newLinks(labels config.Labels) pipeline.Links {
	links := pipeline.DefaultLinks()
	if labels.AllReviews != "" {
		links.AllReviewsLabel = labels.AllReviews
	}
	if labels.AddReview != "" {
		links.AddReviewLabel = labels.AddReview
	}
	return links
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// openOutput returns stdout of cmd, or the file at path when set.
// The returned close function must be called when writing is done.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	if err := ensureDir(path); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// errNoSources is returned when a command needs plugin slugs and none are
// given or configured.
var errNoSources = errors.New("no plugin slugs provided (pass them as arguments or list them under sources in the configuration file)")
