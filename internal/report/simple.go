package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"github.com/nao1215/pluginreviews/internal/model"
)

// contentWidth is the column at which review content wraps.
const contentWidth = 66

// SimpleWriter outputs human-readable text listings for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds profile and avatar links to every review.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the listing in human-readable format.
func (w *SimpleWriter) Write(listing *Listing) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, listing)
	w.writeReviews(&sb, listing)
	w.writeFooter(&sb, listing)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the listing header.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, listing *Listing) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          PLUGIN REVIEWS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Plugin:         %s\n", listing.SourceID)
	fmt.Fprintf(sb, "All Reviews:    %s\n", listing.ReviewsURL)
	fmt.Fprintf(sb, "Generated:      %s\n", listing.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Reviews:        %d\n", len(listing.Reviews))
	if len(listing.Reviews) > 0 {
		fmt.Fprintf(sb, "Average Rating: %.1f\n", listing.AverageRating())
	}
	sb.WriteString("\n")
}

// writeReviews writes one block per review.
func (w *SimpleWriter) writeReviews(sb *strings.Builder, listing *Listing) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	if len(listing.Reviews) == 0 {
		sb.WriteString("No reviews found.\n\n")
		return
	}

	for i, r := range listing.Reviews {
		w.writeReview(sb, i+1, r)
	}
}

func (w *SimpleWriter) writeReview(sb *strings.Builder, n int, r model.EnrichedReview) {
	fmt.Fprintf(sb, "[%d] %s  %s\n", n, stars(r.RatingValue), plainText(r.Title))

	byline := "    by " + orDash(plainText(r.Username.Text))
	if r.DateText != "" {
		byline += " on " + r.DateText
	}
	sb.WriteString(byline)
	sb.WriteString("\n")

	if w.verbose {
		fmt.Fprintf(sb, "    Profile: %s\n", orDash(r.Username.ProfileURL))
		fmt.Fprintf(sb, "    Avatar:  %s\n", orDash(r.AvatarURL))
	}

	if content := plainText(r.Content); content != "" {
		sb.WriteString("\n")
		for _, line := range strings.Split(wordwrap.WrapString(content, contentWidth), "\n") {
			sb.WriteString("    ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the listing footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, listing *Listing) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Read or add reviews at %s\n", listing.ReviewsURL)
	sb.WriteString("\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
