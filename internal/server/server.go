// Package server exposes the enrichment pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/contact-enricher/internal/config"
	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/provider"
	"github.com/sells-group/contact-enricher/internal/store"
)

const (
	serviceName           = "contact-enrichment-service"
	defaultVersion        = "1.0.0"
	defaultRequestTimeout = 180 * time.Second
	maxBodyBytes          = 1 << 20
)

// Enricher runs one enrichment. *pipeline.Pipeline satisfies it.
type Enricher interface {
	Enrich(ctx context.Context, req model.EnrichmentRequest) (*model.EnrichmentResponse, error)
}

// ProviderLister reports the available models. *provider.Registry
// satisfies it.
type ProviderLister interface {
	Providers() provider.Listing
}

// Server holds the HTTP API dependencies.
type Server struct {
	cfg       config.ServerConfig
	auth      config.AuthConfig
	enricher  Enricher
	providers ProviderLister
	runs      store.Store
	metrics   http.Handler
	now       func() time.Time
}

// New creates a Server. runs and metrics may be nil, in which case the run
// history and /metrics routes are not mounted.
func New(cfg *config.Config, enricher Enricher, providers ProviderLister, runs store.Store, metrics http.Handler) *Server {
	return &Server{
		cfg:       cfg.Server,
		auth:      cfg.Auth,
		enricher:  enricher,
		providers: providers,
		runs:      runs,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.Timeout(s.requestTimeout()))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/api/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(apiKeyAuth(s.auth))
		r.Post("/api/contact-enrichment", s.handleEnrich)
		if s.providers != nil {
			r.Get("/api/providers", s.handleProviders)
		}
		if s.runs != nil {
			r.Get("/api/runs", s.handleListRuns)
			r.Get("/api/runs/{id}", s.handleGetRun)
		}
	})

	return r
}

func (s *Server) corsOrigins() []string {
	if len(s.cfg.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.CORSOrigins
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.RequestTimeoutSecs > 0 {
		return time.Duration(s.cfg.RequestTimeoutSecs) * time.Second
	}
	return defaultRequestTimeout
}

func (s *Server) version() string {
	if s.cfg.Version != "" {
		return s.cfg.Version
	}
	return defaultVersion
}
