// Package http exposes the conversion pipeline over a small JSON API so the
// engine can run as a shared service instead of a local CLI.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/crossflow/internal/cache"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Translator defines the interface for the conversion core.
type Translator interface {
	Translate(ctx context.Context, definition []byte, config map[string]string) ([]byte, error)
}

// Server wires the translator, optional artifact cache and metrics behind a
// chi router.
type Server struct {
	translator Translator
	cache      *cache.Store
	metrics    *metrics
	logger     *slog.Logger
	version    string
}

type Option func(*Server)

// WithCache enables the Redis artifact cache.
func WithCache(store *cache.Store) Option {
	return func(s *Server) {
		s.cache = store
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a server around the translator.
func NewServer(translator Translator, opts ...Option) *Server {
	s := &Server{
		translator: translator,
		metrics:    newMetrics(),
		logger:     slog.Default(),
		version:    "dev",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler builds the HTTP routing for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/info", s.handleInfo)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	r.Post("/convert", s.handleConvert)

	return r
}

// ConvertRequest is the POST /convert body.
type ConvertRequest struct {
	// Definition is the source workflow XML.
	Definition string `json:"definition"`
	// Properties seeds the configuration mapping for placeholder resolution.
	Properties map[string]string `json:"properties,omitempty"`
}

// ConvertResponse is the POST /convert reply.
type ConvertResponse struct {
	Artifact string `json:"artifact"`
	Cached   bool   `json:"cached"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.metrics.conversions.WithLabelValues("bad_request").Inc()
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Definition == "" {
		s.metrics.conversions.WithLabelValues("bad_request").Inc()
		http.Error(w, "Missing workflow definition", http.StatusBadRequest)
		return
	}

	definition := []byte(body.Definition)
	key := cache.Key(definition, body.Properties)

	if s.cache != nil {
		if artifact, err := s.cache.Get(r.Context(), key); err == nil {
			s.metrics.cacheHits.Inc()
			s.metrics.conversions.WithLabelValues("ok").Inc()
			s.writeArtifact(w, artifact, true)
			return
		} else if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("artifact cache lookup failed", "err", err)
		}
	}

	artifact, err := s.translator.Translate(r.Context(), definition, body.Properties)
	if err != nil {
		s.metrics.conversions.WithLabelValues("error").Inc()
		s.logger.Error("conversion failed", "err", err)
		http.Error(w, fmt.Sprintf("Conversion error: %v", err), http.StatusUnprocessableEntity)
		return
	}

	if s.cache != nil {
		if err := s.cache.Put(r.Context(), key, artifact); err != nil {
			s.logger.Warn("artifact cache store failed", "err", err)
		}
	}

	s.metrics.conversions.WithLabelValues("ok").Inc()
	s.metrics.duration.Observe(time.Since(start).Seconds())
	s.writeArtifact(w, artifact, false)
}

func (s *Server) writeArtifact(w http.ResponseWriter, artifact []byte, cached bool) {
	w.Header().Set("Content-Type", "application/json")
	resp := ConvertResponse{Artifact: string(artifact), Cached: cached}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("convert encode error", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"app":     "crossflow-http",
		"version": s.version,
	})
}
