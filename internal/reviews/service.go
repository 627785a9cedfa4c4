package reviews

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nao1215/pluginreviews/internal/cache"
	"github.com/nao1215/pluginreviews/internal/format"
	"github.com/nao1215/pluginreviews/internal/model"
	"github.com/nao1215/pluginreviews/internal/pipeline"
)

// DefaultFallbackMessage is rendered when reviews cannot be fetched.
// "%s" is replaced by the catalog review page.
const DefaultFallbackMessage = `An error occured. You can <a href="%s">check out all the reviews on WordPress.org</a>`

// Render results reported to an Observer.
const (
	ResultOK          = "ok"
	ResultUnavailable = "unavailable"
)

// Source returns the review records of a source. cache.Gateway implements it.
type Source interface {
	GetReviews(ctx context.Context, sourceID string) ([]model.ReviewRecord, error)
}

// Observer receives render results. metrics.Metrics implements it.
type Observer interface {
	ObserveRender(result string)
}

// Service renders review lists.
// It is safe for concurrent use.
type Service struct {
	source    Source
	formatter *format.Formatter
	links     pipeline.Links
	fallback  string
	logger    *slog.Logger
	observer  Observer
}

// Option configures a Service.
type Option func(*Service)

// WithFormatter sets the formatter applied to every record.
func WithFormatter(f *format.Formatter) Option {
	return func(s *Service) {
		if f != nil {
			s.formatter = f
		}
	}
}

// WithLinks sets the catalog link labels and base URL.
func WithLinks(links pipeline.Links) Option {
	return func(s *Service) {
		s.links = links
	}
}

// WithFallbackMessage sets the message rendered when reviews are
// unavailable. "%s" is replaced by the catalog review page.
func WithFallbackMessage(msg string) Option {
	return func(s *Service) {
		if msg != "" {
			s.fallback = msg
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithObserver sets the receiver of render results.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// NewService creates a Service reading reviews from source.
func NewService(source Source, opts ...Option) *Service {
	s := &Service{
		source:    source,
		formatter: format.New(),
		links:     pipeline.DefaultLinks(),
		fallback:  DefaultFallbackMessage,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Render returns the HTML review list described by opts, or the fallback
// message when the reviews are unavailable.
func (s *Service) Render(ctx context.Context, opts model.RenderOptions) string {
	opts = opts.Normalize()

	enriched, err := s.enrich(ctx, opts)
	if err != nil {
		s.observe(ResultUnavailable)
		return s.FallbackMessage(opts.SourceID)
	}

	c, err := pipeline.Run(ctx, s.newPipeline(), enriched, opts)
	if err != nil {
		s.logger.Warn("render interrupted", "source", opts.SourceID, "error", err)
		s.observe(ResultUnavailable)
		return s.FallbackMessage(opts.SourceID)
	}

	s.observe(ResultOK)
	return c.Output
}

// Reviews returns the formatted reviews that Render would include, in
// order. The only error it returns wraps cache.ErrUnavailable or comes from
// ctx.
func (s *Service) Reviews(ctx context.Context, opts model.RenderOptions) ([]model.EnrichedReview, error) {
	opts = opts.Normalize()

	enriched, err := s.enrich(ctx, opts)
	if err != nil {
		return nil, err
	}

	c, err := pipeline.Run(ctx, s.newPipeline(), enriched, opts)
	if err != nil {
		return nil, err
	}
	return c.Reviews, nil
}

// FallbackMessage returns the unavailable message for sourceID.
func (s *Service) FallbackMessage(sourceID string) string {
	return strings.ReplaceAll(s.fallback, "%s", s.links.ReviewsURL(sourceID))
}

// ReviewsURL returns the catalog review page of sourceID.
func (s *Service) ReviewsURL(sourceID string) string {
	return s.links.ReviewsURL(sourceID)
}

// enrich fetches and formats the records of opts.SourceID.
func (s *Service) enrich(ctx context.Context, opts model.RenderOptions) ([]model.EnrichedReview, error) {
	records, err := s.source.GetReviews(ctx, opts.SourceID)
	if err != nil {
		if errors.Is(err, cache.ErrUnavailable) {
			s.logger.Warn("reviews unavailable", "source", opts.SourceID, "error", err)
		} else {
			s.logger.Error("failed to get reviews", "source", opts.SourceID, "error", err)
		}
		return nil, err
	}

	enriched := make([]model.EnrichedReview, 0, len(records))
	for _, record := range records {
		enriched = append(enriched, s.formatter.Format(record, opts))
	}
	return enriched, nil
}

func (s *Service) newPipeline() *pipeline.Pipeline {
	return pipeline.NewRenderPipeline(s.links, pipeline.WithLogger(s.logger))
}

func (s *Service) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveRender(result)
	}
}
