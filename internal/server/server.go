package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nao1215/pluginreviews/internal/model"
)

// Default server settings.
const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultRequestTimeout  = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	readHeaderTimeout      = 5 * time.Second
)

// Renderer produces review output. reviews.Service implements it.
type Renderer interface {
	Render(ctx context.Context, opts model.RenderOptions) string
	Reviews(ctx context.Context, opts model.RenderOptions) ([]model.EnrichedReview, error)
	ReviewsURL(sourceID string) string
}

// DefaultsFunc returns the base render options of a source before request
// attributes are applied.
type DefaultsFunc func(sourceID string) model.RenderOptions

// Server routes HTTP requests to a Renderer.
type Server struct {
	mux            *chi.Mux
	renderer       Renderer
	defaults       DefaultsFunc
	observer       Observer
	metrics        http.Handler
	requestTimeout time.Duration
	logger         *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDefaults sets the per-source base render options.
func WithDefaults(fn DefaultsFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.defaults = fn
		}
	}
}

// WithObserver reports every request to o.
func WithObserver(o Observer) Option {
	return func(s *Server) {
		s.observer = o
	}
}

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithRequestTimeout bounds the time spent on one request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// New creates a Server with all routes mounted.
func New(renderer Renderer, opts ...Option) *Server {
	s := &Server{
		renderer: renderer,
		defaults: func(sourceID string) model.RenderOptions {
			o := model.DefaultRenderOptions()
			o.SourceID = sourceID
			return o
		},
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	m := chi.NewRouter()
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(timeout(s.requestTimeout))
	if s.observer != nil {
		m.Use(observe(s.observer))
	}
	m.Use(requestLogger(s.logger))

	m.Get("/healthz", handleHealth)
	m.Get("/reviews", s.handleRender)
	m.Get("/reviews/{slug}", s.handleRender)
	m.Get("/reviews.json", s.handleJSON)
	m.Get("/reviews/{slug}/json", s.handleJSON)
	if s.metrics != nil {
		m.Handle("/metrics", s.metrics)
	}

	s.mux = m
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
