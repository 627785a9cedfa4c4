package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".pluginreviews"

// xdgConfigFile is the configuration file name inside XDGConfigDir.
const xdgConfigFile = "config.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PLUGINREVIEWS_"

// Environment overrides read by ApplyEnv.
const (
	EnvCache         = EnvPrefix + "CACHE"
	EnvCacheTTL      = EnvPrefix + "CACHE_TTL"
	EnvCacheDir      = EnvPrefix + "CACHE_DIR"
	EnvRedisAddr     = EnvPrefix + "REDIS_ADDR"
	EnvRedisPassword = EnvPrefix + "REDIS_PASSWORD"
	EnvRedisDB       = EnvPrefix + "REDIS_DB"
	EnvProxy         = EnvPrefix + "PROXY"
	EnvProxyUser     = EnvPrefix + "PROXY_USER"
	EnvProxyPassword = EnvPrefix + "PROXY_PASSWORD"
	EnvListen        = EnvPrefix + "LISTEN"
	EnvBaseURL       = EnvPrefix + "BASE_URL"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cf := NewFile()
	if err := yaml.Unmarshal(data, cf); err != nil {
		return nil, err
	}

	if cf.Sources == nil {
		cf.Sources = make(map[string]SourceConfig)
	}
	cf.dir = filepath.Dir(path)

	return cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .pluginreviews in the current directory
// 3. Look for .pluginreviews in the user's home directory
// 4. Look for config.yaml in XDGConfigDir
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadEnvFiles loads variables from .env style files into the process
// environment without overriding variables that are already set.
// Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv copies the PLUGINREVIEWS_* overrides found by lookup onto c.
// Pass os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvCache, &c.CacheBackend)
	str(EnvCacheDir, &c.CacheDir)
	str(EnvRedisAddr, &c.RedisAddr)
	str(EnvRedisPassword, &c.RedisPassword)
	str(EnvProxy, &c.ProxyAddress)
	str(EnvProxyUser, &c.ProxyUsername)
	str(EnvProxyPassword, &c.ProxyPassword)
	str(EnvListen, &c.ListenAddr)
	str(EnvBaseURL, &c.BaseURL)

	if v, ok := lookup(EnvCacheTTL); ok && v != "" {
		ttl, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidEnv, EnvCacheTTL, err)
		}
		c.CacheTTL = ttl
	}

	if v, ok := lookup(EnvRedisDB); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidEnv, EnvRedisDB, err)
		}
		c.RedisDB = db
	}

	return nil
}
