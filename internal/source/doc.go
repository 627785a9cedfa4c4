// Package source fetches plugin reviews from the WordPress.org plugin
// information API.
//
// Client.Fetch returns the raw reviews section of a plugin, the HTML blob the
// extractor understands. Requests are rate limited on the client side and
// retried on 429 and transient 5xx responses, honoring Retry-After. An
// optional SOCKS5 proxy can be configured with NewProxyHTTPClient.
package source
