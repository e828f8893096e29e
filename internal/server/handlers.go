package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/pipeline"
	"github.com/sells-group/contact-enricher/internal/provider"
	"github.com/sells-group/contact-enricher/internal/store"
)

const (
	msgContactRequired = "Contact information is required"
	msgIdentifying     = "At least one of the following is required: name, email, or company+title combination"
	msgNoProviders     = "No chat model providers available. Please configure at least one provider API key or local model URL"
)

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{StatusCode: status, Error: msg})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "Contact Enrichment Service",
		"version": s.version(),
		"security": map[string]string{
			"authentication": "API key via X-API-Key header or Authorization: Bearer token",
			"note":           "All /api endpoints except /api/health require authentication when enabled",
		},
		"endpoints": map[string]string{
			"GET /":                        "This documentation",
			"GET /api/health":              "Health check (no auth required)",
			"POST /api/contact-enrichment": "Enrich a contact",
			"GET /api/providers":           "Available chat and embedding models",
			"GET /api/runs":                "Recent enrichment runs",
			"GET /api/runs/{id}":           "One enrichment run",
			"GET /metrics":                 "Prometheus metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"service":   serviceName,
		"version":   s.version(),
	})
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	var envelope struct {
		ContactInfo json.RawMessage `json:"contactInfo"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(envelope.ContactInfo) == 0 || string(envelope.ContactInfo) == "null" {
		writeError(w, http.StatusBadRequest, msgContactRequired)
		return
	}

	var req model.EnrichmentRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := s.enricher.Enrich(r.Context(), req)
	if err != nil {
		status, msg := classify(err)
		zap.L().Error("server: enrichment failed",
			zap.Int("status", status),
			zap.Error(err),
		)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// classify maps pipeline and provider errors to HTTP status codes.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidContact):
		return http.StatusBadRequest, msgIdentifying
	case errors.Is(err, provider.ErrUnknownProvider), errors.Is(err, provider.ErrUnknownModel):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, provider.ErrNoChatProvider):
		return http.StatusServiceUnavailable, msgNoProviders
	case errors.Is(err, pipeline.ErrLLMInvocationFailed):
		return http.StatusBadGateway, "Contact enrichment error: " + err.Error()
	default:
		return http.StatusInternalServerError, "Contact enrichment error: " + err.Error()
	}
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.providers.Providers())
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.RunFilter{Status: model.RunStatus(q.Get("status"))}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	runs, err := s.runs.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.runs.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		zap.L().Error("server: get run", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// intParam parses an optional non-negative integer query value.
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}
