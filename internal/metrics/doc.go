// Package metrics exposes Prometheus counters for cache events, upstream
// fetches, renders and HTTP requests.
//
// A Metrics value owns its registry, so tests and multiple servers in one
// process never collide on registration.
package metrics
