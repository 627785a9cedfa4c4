package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/pluginreviews/internal/model"
)

// NewRenderPipeline returns the standard sequence:
// filter, sort, limit, concatenate, wrap.
func NewRenderPipeline(links Links, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		FilterStep{},
		SortStep{},
		LimitStep{},
		ConcatenateStep{},
		WrapStep{Links: links},
	)
	return p
}

// Render runs the standard pipeline over reviews and returns the HTML.
// opts are normalized first.
func Render(ctx context.Context, reviews []model.EnrichedReview, opts model.RenderOptions) string {
	c, err := Run(ctx, NewRenderPipeline(DefaultLinks()), reviews, opts)
	if err != nil {
		slog.Default().Warn("render interrupted", "error", err)
		return ""
	}
	return c.Output
}

// Run executes p over reviews and returns the resulting collection.
// opts are normalized first.
func Run(ctx context.Context, p *Pipeline, reviews []model.EnrichedReview, opts model.RenderOptions) (*Collection, error) {
	c := NewCollection(reviews, opts.Normalize())
	if err := p.Execute(ctx, c); err != nil {
		return c, err
	}
	return c, nil
}
