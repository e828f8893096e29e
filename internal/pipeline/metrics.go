package pipeline

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeMalformed = "malformed"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// Soft failure kinds.
const (
	SoftSearch     = "search"
	SoftExtraction = "extraction"
	SoftEmbedding  = "embedding"
	SoftStore      = "store"
)

// Metrics holds the pipeline's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Requests      *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	SoftFailures  *prometheus.CounterVec
	ParseLayers   *prometheus.CounterVec
	LLMCost       *prometheus.CounterVec
}

// NewMetrics creates and registers the pipeline collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrich_requests_total",
			Help: "Enrichment requests by outcome.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enrich_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		SoftFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrich_soft_failures_total",
			Help: "Degraded stage outcomes that did not fail the request.",
		}, []string{"kind"}),
		ParseLayers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrich_completion_parse_total",
			Help: "Completions by the parse layer that succeeded.",
		}, []string{"layer"}),
		LLMCost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrich_llm_cost_usd_total",
			Help: "Estimated chat model spend in USD.",
		}, []string{"provider"}),
	}
	m.registry.MustRegister(m.Requests, m.StageDuration, m.SoftFailures, m.ParseLayers, m.LLMCost)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) request(outcome string) {
	if m != nil {
		m.Requests.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) stage(name string, seconds float64) {
	if m != nil {
		m.StageDuration.WithLabelValues(name).Observe(seconds)
	}
}

func (m *Metrics) soft(kind string) {
	if m != nil {
		m.SoftFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) parsed(layer ParseLayer) {
	if m != nil {
		m.ParseLayers.WithLabelValues(string(layer)).Inc()
	}
}

func (m *Metrics) cost(provider string, usd float64) {
	if m != nil && usd > 0 {
		m.LLMCost.WithLabelValues(provider).Add(usd)
	}
}
