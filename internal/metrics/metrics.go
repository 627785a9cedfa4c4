package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "pluginreviews"

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	cacheEvents      *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram
	renders          *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

// New creates a Metrics with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: Namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels/errors."},
			[]string{"cache", "event"},
		),
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: Namespace, Name: "upstream_requests_total", Help: "Review fetches from the plugin catalog."},
			[]string{"outcome"},
		),
		upstreamLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace, Name: "upstream_request_duration_seconds",
				Help:    "Review fetch duration seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: Namespace, Name: "renders_total", Help: "Rendered review lists."},
			[]string{"result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: Namespace, Name: "http_requests_total", Help: "HTTP requests."},
			[]string{"route", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace, Name: "http_request_duration_seconds",
				Help:    "HTTP request duration seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}

	m.registry.MustRegister(
		m.cacheEvents,
		m.upstreamRequests,
		m.upstreamLatency,
		m.renders,
		m.httpRequests,
		m.httpLatency,
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCache counts a cache event (hit|miss|set|del|error|purge).
func (m *Metrics) ObserveCache(cache, event string) {
	m.cacheEvents.WithLabelValues(cache, event).Inc()
}

// ObserveUpstream counts a catalog fetch and records its duration.
func (m *Metrics) ObserveUpstream(outcome string, d time.Duration) {
	m.upstreamRequests.WithLabelValues(outcome).Inc()
	m.upstreamLatency.Observe(d.Seconds())
}

// ObserveRender counts a render by result (ok|unavailable).
func (m *Metrics) ObserveRender(result string) {
	m.renders.WithLabelValues(result).Inc()
}

// ObserveHTTP counts a served request and records its duration.
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(route, method).Observe(d.Seconds())
}
