package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const twoReviews = `<div class="review"><h4>First</h4><span class="screen-reader-text">5 stars</span></div>` +
	`<div class="review"><h4>Second</h4><span class="screen-reader-text">2 stars</span></div>`

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingFetcher returns html and counts calls.
type countingFetcher struct {
	calls atomic.Int32
	html  string
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls.Add(1)
	return f.html, f.err
}

// failingStore fails every write.
type failingStore struct {
	*MemoryStore
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("disk full")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestKey tests cache key derivation.
func TestKey(t *testing.T) {
	t.Parallel()

	key := Key("wordpress-reviews")
	if !strings.HasPrefix(key, KeyPrefix) {
		t.Errorf("expected prefix %q, got %q", KeyPrefix, key)
	}
	if len(key) != len(KeyPrefix)+64 {
		t.Errorf("expected fixed-length digest, got %q", key)
	}
	if Key("wordpress-reviews") != key {
		t.Error("expected deterministic key")
	}
	if Key("awesome-support") == key {
		t.Error("expected different sources to have different keys")
	}
	if long := Key(strings.Repeat("x", 10000)); len(long) != len(key) {
		t.Errorf("expected long identifiers to hash to the same length, got %d", len(long))
	}
}

// TestGatewayGetReviews tests read-through caching.
func TestGatewayGetReviews(t *testing.T) {
	t.Parallel()

	t.Run("miss fetches and caches, hit does not fetch", func(t *testing.T) {
		t.Parallel()

		fetcher := &countingFetcher{html: twoReviews}
		store := NewMemoryStore()
		g := NewGateway(store, fetcher, WithLogger(quietLogger()))

		first, err := g.GetReviews(context.Background(), "demo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(first) != 2 || first[0].Title != "First" {
			t.Fatalf("unexpected records: %+v", first)
		}

		second, err := g.GetReviews(context.Background(), "demo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fetcher.calls.Load() != 1 {
			t.Errorf("expected 1 fetch, got %d", fetcher.calls.Load())
		}
		if len(second) != 2 || second[1] != first[1] {
			t.Errorf("expected cached records, got %+v", second)
		}
	})

	t.Run("fetch failure is unavailable and not cached", func(t *testing.T) {
		t.Parallel()

		fetcher := &countingFetcher{err: errors.New("connection refused")}
		store := NewMemoryStore()
		g := NewGateway(store, fetcher, WithLogger(quietLogger()))

		_, err := g.GetReviews(context.Background(), "demo")
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
		if !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("expected cause in error, got %v", err)
		}
		if store.Len() != 0 {
			t.Errorf("expected nothing cached, got %d entries", store.Len())
		}

		_, _ = g.GetReviews(context.Background(), "demo")
		if fetcher.calls.Load() != 2 {
			t.Errorf("expected retry on next request, got %d fetches", fetcher.calls.Load())
		}
	})

	t.Run("expired entries are fetched again", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		fetcher := &countingFetcher{html: twoReviews}
		store := NewMemoryStore(WithClock(clock.Now))
		g := NewGateway(store, fetcher, WithTTL(time.Hour), WithLogger(quietLogger()))

		_, _ = g.GetReviews(context.Background(), "demo")
		clock.Advance(59 * time.Minute)
		_, _ = g.GetReviews(context.Background(), "demo")
		if fetcher.calls.Load() != 1 {
			t.Fatalf("expected cache hit before expiry, got %d fetches", fetcher.calls.Load())
		}

		clock.Advance(time.Minute)
		_, _ = g.GetReviews(context.Background(), "demo")
		if fetcher.calls.Load() != 2 {
			t.Errorf("expected refetch after expiry, got %d fetches", fetcher.calls.Load())
		}
	})

	t.Run("write failure still returns records", func(t *testing.T) {
		t.Parallel()

		fetcher := &countingFetcher{html: twoReviews}
		g := NewGateway(failingStore{NewMemoryStore()}, fetcher, WithLogger(quietLogger()))

		records, err := g.GetReviews(context.Background(), "demo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("expected 2 records, got %d", len(records))
		}

		_, _ = g.GetReviews(context.Background(), "demo")
		if fetcher.calls.Load() != 2 {
			t.Errorf("expected refetch when nothing was written, got %d", fetcher.calls.Load())
		}
	})

	t.Run("undecodable entry is treated as a miss", func(t *testing.T) {
		t.Parallel()

		fetcher := &countingFetcher{html: twoReviews}
		store := NewMemoryStore()
		_ = store.Set(context.Background(), Key("demo"), []byte("{not json"), 0)
		g := NewGateway(store, fetcher, WithLogger(quietLogger()))

		records, err := g.GetReviews(context.Background(), "demo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 || fetcher.calls.Load() != 1 {
			t.Errorf("expected refetch, got %d records and %d fetches", len(records), fetcher.calls.Load())
		}
	})

	t.Run("empty extraction is cached", func(t *testing.T) {
		t.Parallel()

		fetcher := &countingFetcher{html: "<p>no reviews yet</p>"}
		g := NewGateway(NewMemoryStore(), fetcher, WithLogger(quietLogger()))

		records, err := g.GetReviews(context.Background(), "demo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", records)
		}

		_, _ = g.GetReviews(context.Background(), "demo")
		if fetcher.calls.Load() != 1 {
			t.Errorf("expected cached empty list, got %d fetches", fetcher.calls.Load())
		}
	})

	t.Run("fetcher func adapter", func(t *testing.T) {
		t.Parallel()

		var got string
		fetch := FetcherFunc(func(_ context.Context, sourceID string) (string, error) {
			got = sourceID
			return twoReviews, nil
		})
		g := NewGateway(NewMemoryStore(), fetch, WithLogger(quietLogger()))

		if _, err := g.GetReviews(context.Background(), "awesome-support"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "awesome-support" {
			t.Errorf("expected fetcher to receive source id, got %q", got)
		}
	})
}

// TestGatewayRefresh tests invalidation and refresh.
func TestGatewayRefresh(t *testing.T) {
	t.Parallel()

	fetcher := &countingFetcher{html: twoReviews}
	store := NewMemoryStore()
	g := NewGateway(store, fetcher, WithLogger(quietLogger()))
	ctx := context.Background()

	_, _ = g.GetReviews(ctx, "demo")

	if err := g.Invalidate(ctx, "demo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected entry removed, got %d", store.Len())
	}

	if _, err := g.Refresh(ctx, "demo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.calls.Load() != 2 {
		t.Errorf("expected 2 fetches, got %d", fetcher.calls.Load())
	}
	if store.Len() != 1 {
		t.Errorf("expected entry cached again, got %d", store.Len())
	}
}
