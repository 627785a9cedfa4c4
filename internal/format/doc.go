// Package format turns extracted review records into display-ready reviews.
//
// A Formatter parses the free-form rating and date of a record, resizes the
// reviewer's Gravatar, truncates long review bodies behind a "Read more"
// affordance and substitutes everything into an HTML template.
//
// Template substitution is unescaped: the values come from extracted text
// that is already escaped at the source, and the template itself is trusted.
package format
