package pipeline

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/pluginreviews/internal/model"
)

// FilterStep drops reviews rated below the minimum rating of the options.
// A filter of "all", or anything that is not 1 to 5, keeps every review.
type FilterStep struct{}

// Name returns the step name.
func (FilterStep) Name() string {
	return "filter"
}

// Do executes the filter step.
func (FilterStep) Do(_ context.Context, c *Collection) error {
	minRating, ok := MinRating(c.Options.RatingFilter)
	if !ok {
		return nil
	}

	kept := c.Reviews[:0]
	for _, r := range c.Reviews {
		if r.RatingValue >= minRating {
			kept = append(kept, r)
		}
	}
	c.Reviews = kept
	return nil
}

// MinRating parses a rating filter. ok is false when the filter keeps
// every review.
func MinRating(filter string) (minRating int, ok bool) {
	if filter == model.RatingFilterAll {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(filter))
	if err != nil || n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}

// SortStep orders reviews by rating or timestamp. The sort is stable in both
// directions, so equal keys keep their previous relative order.
type SortStep struct{}

// Name returns the step name.
func (SortStep) Name() string {
	return "sort"
}

// Do executes the sort step.
func (SortStep) Do(_ context.Context, c *Collection) error {
	key := func(r model.EnrichedReview) int64 {
		if c.Options.SortField == model.SortByRating {
			return int64(r.RatingValue)
		}
		return r.Timestamp
	}

	desc := c.Options.SortDirection != model.SortAsc
	sort.SliceStable(c.Reviews, func(i, j int) bool {
		if desc {
			return key(c.Reviews[i]) > key(c.Reviews[j])
		}
		return key(c.Reviews[i]) < key(c.Reviews[j])
	})
	return nil
}

// LimitStep keeps the first Limit reviews. NoLimit keeps all of them.
type LimitStep struct{}

// Name returns the step name.
func (LimitStep) Name() string {
	return "limit"
}

// Do executes the limit step.
func (LimitStep) Do(_ context.Context, c *Collection) error {
	limit := c.Options.Limit
	if limit < 0 || limit >= len(c.Reviews) {
		return nil
	}
	c.Reviews = c.Reviews[:limit]
	return nil
}

// ConcatenateStep joins the rendered markup of every review into Output.
type ConcatenateStep struct{}

// Name returns the step name.
func (ConcatenateStep) Name() string {
	return "concatenate"
}

// Do executes the concatenate step.
func (ConcatenateStep) Do(_ context.Context, c *Collection) error {
	var b strings.Builder
	for _, r := range c.Reviews {
		b.WriteString(r.RenderedOutput)
	}
	c.Output = b.String()
	return nil
}

// DefaultReviewsURL is the catalog page listing every review of a plugin.
// The source identifier is appended.
const DefaultReviewsURL = "https://wordpress.org/support/view/plugin-reviews/"

// Default link labels.
const (
	DefaultAllReviewsLabel = "See all reviews"
	DefaultAddReviewLabel  = "Add a review"
)

// Links configures the catalog links appended by WrapStep.
type Links struct {
	// BaseURL is the catalog review page prefix. Empty means DefaultReviewsURL.
	BaseURL string

	// AllReviewsLabel is the text of the "see all reviews" link.
	AllReviewsLabel string

	// AddReviewLabel is the text of the "add a review" link.
	AddReviewLabel string
}

// DefaultLinks returns the links used by the catalog.
func DefaultLinks() Links {
	return Links{
		BaseURL:         DefaultReviewsURL,
		AllReviewsLabel: DefaultAllReviewsLabel,
		AddReviewLabel:  DefaultAddReviewLabel,
	}
}

// ReviewsURL returns the catalog review page of sourceID.
func (l Links) ReviewsURL(sourceID string) string {
	base := l.BaseURL
	if base == "" {
		base = DefaultReviewsURL
	}
	return base + url.PathEscape(sourceID)
}

// WrapStep wraps Output in the container element and appends the catalog
// links enabled in the options.
type WrapStep struct {
	Links Links
}

// Name returns the step name.
func (WrapStep) Name() string {
	return "wrap"
}

// Do executes the wrap step.
func (s WrapStep) Do(_ context.Context, c *Collection) error {
	opts := c.Options
	output := c.Output

	if opts.ContainerTag != "" {
		attrs := []string{"class='" + html.EscapeString(containerClass(opts)) + "'"}
		if opts.ContainerID != "" {
			attrs = append(attrs, "id='"+html.EscapeString(opts.ContainerID)+"'")
		}
		output = "<" + opts.ContainerTag + " " + strings.Join(attrs, " ") + ">" +
			output +
			"</" + opts.ContainerTag + ">"
	}

	reviewsURL := s.Links.ReviewsURL(opts.SourceID)
	var links []string
	if opts.LinkToAll {
		links = append(links, "<a href='"+reviewsURL+"' target='_blank' class='wr-reviews-link-all'>"+
			labelOr(s.Links.AllReviewsLabel, DefaultAllReviewsLabel)+"</a>")
	}
	if opts.LinkToAdd {
		links = append(links, "<a href='"+reviewsURL+"#postform' target='_blank' class='wr-reviews-link-add'>"+
			labelOr(s.Links.AddReviewLabel, DefaultAddReviewLabel)+"</a>")
	}
	if len(links) > 0 {
		output += "<p class='wr-reviews-link'>" + strings.Join(links, " | ") + "</p>"
	}

	c.Output = output
	return nil
}

// containerClass returns the user classes followed by the layout marker.
func containerClass(opts model.RenderOptions) string {
	marker := "grid-layout"
	if opts.Layout == model.LayoutCarousel {
		marker = "carousel-layout"
	}
	return strings.TrimSpace(opts.ContainerClass + " " + marker)
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
