package report

import (
	"io"
	"time"

	"github.com/nao1215/pluginreviews/internal/model"
)

// Listing is the post-pipeline review list of one source together with the
// context a reader needs to interpret it.
type Listing struct {
	// SourceID is the catalog slug the reviews belong to.
	SourceID string `json:"plugin_slug"`

	// ReviewsURL is the catalog page listing every review.
	ReviewsURL string `json:"reviews_url"`

	// GeneratedAt is when the listing was produced.
	GeneratedAt time.Time `json:"generated_at"`

	Reviews []model.EnrichedReview `json:"reviews"`
}

// NewListing creates a Listing stamped with the current time.
func NewListing(sourceID, reviewsURL string, reviews []model.EnrichedReview) *Listing {
	return &Listing{
		SourceID:    sourceID,
		ReviewsURL:  reviewsURL,
		GeneratedAt: time.Now().UTC(),
		Reviews:     reviews,
	}
}

// AverageRating returns the mean star rating, 0 for an empty listing.
func (l *Listing) AverageRating() float64 {
	if len(l.Reviews) == 0 {
		return 0
	}
	var sum int
	for _, r := range l.Reviews {
		sum += r.RatingValue
	}
	return float64(sum) / float64(len(l.Reviews))
}

// RatingCounts returns the number of reviews per star rating, indexed 0 to 5.
func (l *Listing) RatingCounts() [6]int {
	var counts [6]int
	for _, r := range l.Reviews {
		if r.RatingValue >= 0 && r.RatingValue < len(counts) {
			counts[r.RatingValue]++
		}
	}
	return counts
}

// Writer defines the interface for listing output.
type Writer interface {
	// Write outputs the listing to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(listing *Listing) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the listing to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(listing *Listing) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(listing)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for listing writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
