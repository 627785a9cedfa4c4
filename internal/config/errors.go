package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidCacheBackend is returned when the cache backend is not one
	// of memory, sqlite or redis.
	ErrInvalidCacheBackend = errors.New("invalid cache backend: must be memory, sqlite or redis")

	// ErrInvalidCacheTTL is returned when the cache TTL is not positive.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be positive")

	// ErrMissingRedisAddr is returned when the redis backend is selected
	// without an address.
	ErrMissingRedisAddr = errors.New("redis cache requires an address")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the warm concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidRateLimit is returned when the rate limit is negative.
	// Use 0 to disable client-side rate limiting.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidEnv is returned when an environment override cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
