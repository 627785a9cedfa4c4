// Package extract turns catalog review HTML into structured review records.
//
// The catalog publishes every review of a plugin as one HTML fragment. The
// Extractor parses that fragment leniently with golang.org/x/net/html, finds
// the elements whose class list contains the token "review" and pulls the
// reviewer, avatar, title, body, date and rating out of each one.
//
// # Matching
//
// Class matching is token-exact: an element with class "review-body" is not
// a "review" element. This mirrors the XPath idiom
// contains(concat(' ', normalize-space(@class), ' '), ' review ').
//
// # Failure model
//
// Extraction never returns an error. Input that cannot be parsed yields an
// empty slice and a missing sub-field yields an empty string.
//
// # Usage
//
//	ex := extract.NewExtractor()
//	records := ex.Extract(reviewsHTML)
package extract
