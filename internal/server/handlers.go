package server

import (
	"crypto/sha1" //nolint:gosec // ETag fingerprint only
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nao1215/pluginreviews/internal/cache"
	"github.com/nao1215/pluginreviews/internal/model"
)

// problem is an RFC 7807 error body.
type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// reviewsResponse is the body of the JSON endpoint.
type reviewsResponse struct {
	SourceID   string                 `json:"plugin_slug"`
	ReviewsURL string                 `json:"reviews_url"`
	Count      int                    `json:"count"`
	Reviews    []model.EnrichedReview `json:"reviews"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleRender writes the HTML fragment. Unavailable reviews still answer
// 200 with the fallback message so the embedding page renders something.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts := s.renderOptions(r)
	body := s.renderer.Render(r.Context(), opts)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		s.logger.Error("failed to write render body", "error", err)
	}
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	opts := s.renderOptions(r)

	list, err := s.renderer.Reviews(r.Context(), opts)
	if err != nil {
		if errors.Is(err, cache.ErrUnavailable) {
			s.writeProblem(w, http.StatusServiceUnavailable, "Reviews Unavailable", "reviews of "+opts.SourceID+" could not be fetched")
			return
		}
		s.writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	etag, body := s.etagAndBody(reviewsResponse{
		SourceID:   opts.SourceID,
		ReviewsURL: s.renderer.ReviewsURL(opts.SourceID),
		Count:      len(list),
		Reviews:    list,
	})
	if body == nil {
		s.writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}

	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Error("failed to write reviews body", "error", err)
	}
}

// renderOptions merges the source defaults with the query attributes.
// The path slug wins over a plugin_slug query attribute.
func (s *Server) renderOptions(r *http.Request) model.RenderOptions {
	query := r.URL.Query()
	attrs := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) > 0 {
			attrs[key] = values[0]
		}
	}

	sourceID := strings.TrimSpace(attrs[model.AttrSourceID])
	if slug := chi.URLParam(r, "slug"); slug != "" {
		sourceID = slug
		attrs[model.AttrSourceID] = slug
	}
	if sourceID == "" {
		sourceID = model.DefaultSourceID
	}

	return model.ParseRenderOptions(s.defaults(sourceID), attrs)
}

func (s *Server) writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		s.logger.Error("failed to write problem response", "error", err)
	}
}

// etagAndBody marshals v once and derives a weak ETag from the bytes.
func (s *Server) etagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return "", nil
	}
	sum := sha1.Sum(body) //nolint:gosec // ETag fingerprint only
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}
