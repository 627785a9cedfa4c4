// Package reviews is the render entry point: it ties the cache gateway,
// the formatter and the collection pipeline together.
//
// A Service is constructed once and passed to every caller (CLI, HTTP
// server). It never returns an error from Render; an unavailable upstream
// yields a fixed fallback message linking to the catalog instead.
//
// Warmer fills the cache for many sources concurrently.
package reviews
