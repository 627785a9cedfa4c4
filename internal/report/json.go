package report

import (
	"encoding/json"
	"io"
)

// JSONWriter encodes listings as JSON, compact unless an indent is set.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string

	// version is written alongside the listing when non-empty.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent indents nested values with indent, each line starting with prefix.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion wraps the listing in a JSONReport carrying version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter returns a JSONWriter writing to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps a listing with the version of the tool that produced it.
type JSONReport struct {
	Version string   `json:"version"`
	Count   int      `json:"count"`
	Average float64  `json:"average_rating"`
	Listing *Listing `json:"listing"`
}

// Write encodes listing, wrapped in a JSONReport when a version is set.
func (w *JSONWriter) Write(listing *Listing) (int, error) {
	if w.version == "" {
		return w.writeJSON(listing)
	}
	return w.writeJSON(JSONReport{
		Version: w.version,
		Count:   len(listing.Reviews),
		Average: listing.AverageRating(),
		Listing: listing,
	})
}

// writeJSON encodes v followed by a newline.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	data = append(data, '\n')

	return w.output.Write(data)
}
