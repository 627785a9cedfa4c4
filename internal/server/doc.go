// Package server exposes review rendering over HTTP.
//
// It is the embedding surface of pluginreviews: a page requests
// GET /reviews?plugin_slug=... with the same attributes accepted by
// model.ParseRenderOptions and receives the rendered HTML fragment.
// GET /reviews.json returns the selected reviews as JSON, /healthz reports
// liveness and /metrics serves Prometheus metrics when configured.
package server
