// Package config provides configuration structures and utilities for
// pluginreviews: cache backend, upstream client, proxy, HTTP server and
// the per-source render defaults read from the YAML configuration file.
package config
