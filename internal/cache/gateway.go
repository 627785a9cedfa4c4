package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/pluginreviews/internal/extract"
	"github.com/nao1215/pluginreviews/internal/model"
)

// DefaultTTL is how long extracted reviews stay cached.
const DefaultTTL = 24 * time.Hour

// Fetcher retrieves the raw review HTML of a source.
type Fetcher interface {
	Fetch(ctx context.Context, sourceID string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, sourceID string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, sourceID string) (string, error) {
	return f(ctx, sourceID)
}

// Gateway serves review records from a Store, falling back to the Fetcher
// on a miss.
type Gateway struct {
	store     Store
	fetcher   Fetcher
	extractor *extract.Extractor
	ttl       time.Duration
	logger    *slog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithTTL sets the expiry of newly cached entries.
func WithTTL(ttl time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.ttl = ttl
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithExtractor sets the extractor applied to fetched HTML.
func WithExtractor(e *extract.Extractor) GatewayOption {
	return func(g *Gateway) {
		g.extractor = e
	}
}

// NewGateway creates a Gateway over store and fetcher.
func NewGateway(store Store, fetcher Fetcher, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:   store,
		fetcher: fetcher,
		ttl:     DefaultTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.extractor == nil {
		g.extractor = extract.NewExtractor(extract.WithLogger(g.logger))
	}
	return g
}

// Store returns the backing store.
func (g *Gateway) Store() Store {
	return g.store
}

// GetReviews returns the records of sourceID, from the cache when present.
// The only error it returns wraps ErrUnavailable.
func (g *Gateway) GetReviews(ctx context.Context, sourceID string) ([]model.ReviewRecord, error) {
	key := Key(sourceID)

	if records, ok := g.lookup(ctx, key, sourceID); ok {
		return records, nil
	}

	return g.fill(ctx, key, sourceID)
}

// Refresh drops the cached entry of sourceID and fetches it again.
func (g *Gateway) Refresh(ctx context.Context, sourceID string) ([]model.ReviewRecord, error) {
	if err := g.Invalidate(ctx, sourceID); err != nil {
		g.logger.Warn("failed to invalidate cache entry", "source", sourceID, "error", err)
	}
	return g.fill(ctx, Key(sourceID), sourceID)
}

// Invalidate removes the cached entry of sourceID.
func (g *Gateway) Invalidate(ctx context.Context, sourceID string) error {
	if err := g.store.Delete(ctx, Key(sourceID)); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", sourceID, err)
	}
	return nil
}

// lookup returns the cached records. Read errors and undecodable entries
// count as a miss.
func (g *Gateway) lookup(ctx context.Context, key, sourceID string) ([]model.ReviewRecord, bool) {
	data, found, err := g.store.Get(ctx, key)
	if err != nil {
		g.logger.Warn("failed to read cache entry", "source", sourceID, "error", err)
		return nil, false
	}
	if !found {
		g.logger.Debug("cache miss", "source", sourceID)
		return nil, false
	}

	records := make([]model.ReviewRecord, 0)
	if err := json.Unmarshal(data, &records); err != nil {
		g.logger.Warn("discarding undecodable cache entry", "source", sourceID, "error", err)
		return nil, false
	}

	g.logger.Debug("cache hit", "source", sourceID, "count", len(records))
	return records, true
}

// fill fetches, extracts and stores the records of sourceID.
func (g *Gateway) fill(ctx context.Context, key, sourceID string) ([]model.ReviewRecord, error) {
	raw, err := g.fetcher.Fetch(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, sourceID, err)
	}

	records := g.extractor.Extract(raw)

	data, err := json.Marshal(records)
	if err != nil {
		g.logger.Warn("failed to encode reviews for cache", "source", sourceID, "error", err)
		return records, nil
	}
	if err := g.store.Set(ctx, key, data, g.ttl); err != nil {
		g.logger.Warn("failed to write cache entry", "source", sourceID, "error", err)
	}

	g.logger.Debug("cached reviews", "source", sourceID, "count", len(records), "ttl", g.ttl)
	return records, nil
}
