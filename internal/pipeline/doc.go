// Package pipeline turns formatted reviews into the final HTML list.
//
// A Pipeline runs Steps in order over a Collection: filter by minimum rating,
// stable sort by rating or date, limit, concatenate the rendered markup and
// wrap it in an optional container followed by optional catalog links.
// Render builds and runs the standard step sequence.
package pipeline
