package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestMetricsHandler tests that observed values are exposed.
func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveCache("memory", "hit")
	m.ObserveUpstream("ok", 120*time.Millisecond)
	m.ObserveRender("ok")
	m.ObserveHTTP("/reviews", http.MethodGet, http.StatusOK, 12*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		`pluginreviews_cache_events_total{cache="memory",event="hit"} 1`,
		`pluginreviews_upstream_requests_total{outcome="ok"} 1`,
		`pluginreviews_renders_total{result="ok"} 1`,
		`pluginreviews_http_requests_total{method="GET",route="/reviews",status="200"} 1`,
		`pluginreviews_upstream_request_duration_seconds_count 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

// TestMetricsIsolation tests that separate instances do not share state.
func TestMetricsIsolation(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	a.ObserveCache("sqlite", "miss")
	a.ObserveCache("sqlite", "miss")

	if out := scrape(t, a); !strings.Contains(out, `pluginreviews_cache_events_total{cache="sqlite",event="miss"} 2`) {
		t.Errorf("expected two misses, got:\n%s", out)
	}
	if out := scrape(t, b); strings.Contains(out, `cache="sqlite"`) {
		t.Errorf("expected no sqlite events in second instance, got:\n%s", out)
	}
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rr.Body.String()
}
