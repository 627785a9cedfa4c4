package reviews

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/pluginreviews/internal/model"
)

// DefaultWarmConcurrency is the number of sources warmed at once.
const DefaultWarmConcurrency = 4

// Refresher reads or re-fetches the records of a source.
// cache.Gateway implements it.
type Refresher interface {
	Source
	Refresh(ctx context.Context, sourceID string) ([]model.ReviewRecord, error)
}

// WarmResult is the outcome of warming one source.
type WarmResult struct {
	SourceID string
	Count    int
	Err      error
}

// Warmer populates the cache for many sources concurrently.
type Warmer struct {
	gateway     Refresher
	concurrency int
	force       bool
	logger      *slog.Logger
}

// WarmerOption configures a Warmer.
type WarmerOption func(*Warmer)

// WithConcurrency sets the maximum number of concurrent fetches.
func WithConcurrency(n int) WarmerOption {
	return func(w *Warmer) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// WithForceRefresh makes the Warmer re-fetch sources that are already cached.
func WithForceRefresh(force bool) WarmerOption {
	return func(w *Warmer) {
		w.force = force
	}
}

// WithWarmerLogger sets the logger.
func WithWarmerLogger(logger *slog.Logger) WarmerOption {
	return func(w *Warmer) {
		w.logger = logger
	}
}

// NewWarmer creates a Warmer over gateway.
func NewWarmer(gateway Refresher, opts ...WarmerOption) *Warmer {
	w := &Warmer{
		gateway:     gateway,
		concurrency: DefaultWarmConcurrency,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Warm fetches every source and returns one result per source in input
// order. A failing source does not stop the others; the returned error is
// only set when ctx is cancelled.
func (w *Warmer) Warm(ctx context.Context, sourceIDs []string) ([]WarmResult, error) {
	results := make([]WarmResult, len(sourceIDs))
	err := w.WarmWithCallback(ctx, sourceIDs, func(r WarmResult, i int) {
		results[i] = r
	})
	return results, err
}

// WarmWithCallback is like Warm but hands each result to callback as soon
// as it is ready. callback is called from worker goroutines, each with a
// distinct index.
func (w *Warmer) WarmWithCallback(ctx context.Context, sourceIDs []string, callback func(r WarmResult, index int)) error {
	w.logger.Info("warming cache",
		"sources", len(sourceIDs),
		"concurrency", w.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for i, sourceID := range sourceIDs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				callback(WarmResult{SourceID: sourceID, Err: ctx.Err()}, i)
				return ctx.Err()
			default:
			}

			result := w.warmOne(ctx, sourceID)
			callback(result, i)
			return nil
		})
	}

	err := g.Wait()

	w.logger.Info("cache warm complete",
		"sources", len(sourceIDs),
		"elapsed", time.Since(startTime),
	)
	return err
}

func (w *Warmer) warmOne(ctx context.Context, sourceID string) WarmResult {
	fetch := w.gateway.GetReviews
	if w.force {
		fetch = w.gateway.Refresh
	}

	records, err := fetch(ctx, sourceID)
	if err != nil {
		w.logger.Warn("failed to warm source", "source", sourceID, "error", err)
		return WarmResult{SourceID: sourceID, Err: err}
	}

	w.logger.Debug("warmed source", "source", sourceID, "count", len(records))
	return WarmResult{SourceID: sourceID, Count: len(records)}
}
