// Package cache stores extracted review records keyed by source identifier.
//
// The Gateway implements read-through caching: a hit returns the stored
// records verbatim, a miss fetches raw HTML through a Fetcher, extracts the
// records and stores them with a TTL. A failed fetch is reported as
// ErrUnavailable and never written, so the next request retries.
//
// Storage is pluggable through the Store interface. MemoryStore keeps
// entries in-process, SQLiteStore persists them to a single file and
// RedisStore shares them across processes. Instrumented wraps any Store and
// reports cache events.
package cache
