package cache

import "errors"

var (
	// ErrUnavailable is returned when reviews could not be fetched from the
	// upstream source. Nothing is cached in that case.
	ErrUnavailable = errors.New("reviews unavailable")

	// ErrPurgeUnsupported is returned by Purge when the backend expires
	// entries on its own.
	ErrPurgeUnsupported = errors.New("store does not support purging")

	// ErrStoreNotFound is returned when a SQLite cache file is required but missing.
	ErrStoreNotFound = errors.New("cache database not found")
)
