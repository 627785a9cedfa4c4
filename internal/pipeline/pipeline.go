package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/pluginreviews/internal/model"
)

// Collection is the state passed from step to step.
type Collection struct {
	// Options are the normalized render options.
	Options model.RenderOptions

	// Reviews are the formatted reviews still in the list.
	Reviews []model.EnrichedReview

	// Output is the HTML built by the concatenate and wrap steps.
	Output string

	// Performed lists the names of the steps that ran, in order.
	Performed []string
}

// NewCollection creates a Collection over reviews. The slice is copied so
// steps never reorder the caller's data.
func NewCollection(reviews []model.EnrichedReview, opts model.RenderOptions) *Collection {
	copied := make([]model.EnrichedReview, len(reviews))
	copy(copied, reviews)
	return &Collection{
		Options: opts,
		Reviews: copied,
	}
}

// Step is one stage of rendering. Each step sees the collection as the
// previous step left it.
type Step interface {
	Do(ctx context.Context, c *Collection) error

	// Name identifies the step in logs and in Collection.Performed.
	Name() string
}

// Pipeline runs steps in order over one Collection.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New returns an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence and stops at the first error.
// Cancellation is checked before each step.
func (p *Pipeline) Execute(ctx context.Context, c *Collection) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		before := len(c.Reviews)
		if err := step.Do(ctx, c); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"source", c.Options.SourceID,
				"error", err,
			)
			return err
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"source", c.Options.SourceID,
			"before", before,
			"after", len(c.Reviews),
		)
		c.Performed = append(c.Performed, step.Name())
	}

	return nil
}

// StepCount returns how many steps were added.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in run order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
