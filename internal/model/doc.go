// Package model defines the data structures shared across pluginreviews.
//
// This package contains the following main types:
//   - ReviewRecord: One review extracted from the catalog HTML (cached)
//   - EnrichedReview: A ReviewRecord with parsed rating, timestamp and markup
//   - RenderOptions: The typed configuration of one render invocation
//
// Models live in their own package so that extract, cache, format and
// pipeline can share them without import cycles. ReviewRecord is JSON
// serializable because it is the value stored in every cache backend.
package model
