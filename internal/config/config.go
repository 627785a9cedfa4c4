package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/pluginreviews/internal/cache"
	"github.com/nao1215/pluginreviews/internal/reviews"
	"github.com/nao1215/pluginreviews/internal/server"
	"github.com/nao1215/pluginreviews/internal/source"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pluginreviews"

	// DefaultCacheBackend persists entries across CLI invocations.
	DefaultCacheBackend = CacheSQLite

	// DefaultCacheTTL is how long fetched reviews stay cached.
	DefaultCacheTTL = cache.DefaultTTL

	// DefaultRedisAddr is the standard local Redis address.
	DefaultRedisAddr = "127.0.0.1:6379"

	// DefaultTimeout bounds one request to the plugin catalog.
	DefaultTimeout = source.DefaultTimeout

	// DefaultUserAgent identifies pluginreviews to the catalog.
	DefaultUserAgent = source.DefaultUserAgent

	// DefaultMaxBodySize limits the catalog response read into memory.
	DefaultMaxBodySize = source.DefaultMaxBodySize

	// DefaultRateLimit is the client-side request rate to the catalog.
	DefaultRateLimit = source.DefaultRequestsPerSecond

	// DefaultMaxRetries is how often throttled or failed requests are retried.
	DefaultMaxRetries = source.DefaultMaxRetries

	// DefaultWarmConcurrency is the number of sources warmed at once.
	DefaultWarmConcurrency = reviews.DefaultWarmConcurrency

	// DefaultListenAddr is where the HTTP server listens.
	DefaultListenAddr = server.DefaultAddr
)

// Config holds all configuration options for pluginreviews.
// It is populated from defaults, the configuration file, the environment
// and CLI flags, in that order, and passed through the application via
// dependency injection rather than global state.
type Config struct {
	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONLogs switches the log output to JSON.
	JSONLogs bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .pluginreviews in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// File holds the configuration file contents. It is never nil after
	// NewConfig.
	File *File

	// CacheBackend is memory, sqlite or redis.
	CacheBackend string

	// CacheTTL is the expiry of newly cached review lists.
	CacheTTL time.Duration

	// CacheDir is the directory holding the SQLite cache database.
	// Defaults to the XDG cache directory (~/.cache/pluginreviews on Linux).
	CacheDir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// BaseURL is the plugin information API endpoint.
	BaseURL string

	// Timeout bounds one request to the plugin catalog.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent to the catalog.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// RateLimit is the maximum number of catalog requests per second.
	// 0 disables client-side rate limiting.
	RateLimit float64

	// MaxRetries is how often a throttled or failed request is retried.
	MaxRetries int

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress  string
	ProxyUsername string
	ProxyPassword string

	// ListenAddr is the address of the HTTP server.
	ListenAddr string

	// WarmConcurrency is the number of sources warmed at once.
	WarmConcurrency int

	// JSONReport enables JSON output of listings.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output of listings.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for rendered output and listings.
	// When set, output is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		File:            NewFile(),
		CacheBackend:    DefaultCacheBackend,
		CacheTTL:        DefaultCacheTTL,
		CacheDir:        XDGCacheDir(),
		RedisAddr:       DefaultRedisAddr,
		BaseURL:         source.DefaultBaseURL,
		Timeout:         DefaultTimeout,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
		RateLimit:       DefaultRateLimit,
		MaxRetries:      DefaultMaxRetries,
		ListenAddr:      DefaultListenAddr,
		WarmConcurrency: DefaultWarmConcurrency,
	}
}

// XDGCacheDir returns the XDG cache directory for pluginreviews.
// On Linux: ~/.cache/pluginreviews
// On macOS: ~/Library/Caches/pluginreviews
// On Windows: %LOCALAPPDATA%\pluginreviews\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pluginreviews.
// On Linux: ~/.config/pluginreviews
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if !slices.Contains([]string{CacheMemory, CacheSQLite, CacheRedis}, c.CacheBackend) {
		return ErrInvalidCacheBackend
	}

	if c.CacheTTL <= 0 {
		return ErrInvalidCacheTTL
	}

	if c.CacheBackend == CacheRedis && c.RedisAddr == "" {
		return ErrMissingRedisAddr
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.WarmConcurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}

	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
