package source

import "errors"

var (
	// ErrNotFound is returned when the catalog does not know the plugin.
	ErrNotFound = errors.New("plugin not found")

	// ErrNoReviews is returned when the plugin information carries no
	// reviews section.
	ErrNoReviews = errors.New("plugin has no reviews section")

	// ErrInvalidSlug is returned for an empty plugin slug.
	ErrInvalidSlug = errors.New("invalid plugin slug")

	// ErrResponseTooLarge is returned when a response exceeds the body limit.
	ErrResponseTooLarge = errors.New("response body too large")

	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: must be host:port format")
)
