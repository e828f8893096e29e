package model

// OptimizationMode trades evidence depth for latency.
type OptimizationMode string

const (
	// ModeSpeed skips page extraction and semantic ranking.
	ModeSpeed OptimizationMode = "speed"
	// ModeBalanced runs every stage.
	ModeBalanced OptimizationMode = "balanced"
)

// ModelSelector names a provider/model pair. The custom OpenAI fields only
// apply when Provider is "custom_openai".
type ModelSelector struct {
	Provider            string `json:"provider"`
	Name                string `json:"name"`
	CustomOpenAIKey     string `json:"customOpenAIKey,omitempty"`
	CustomOpenAIBaseURL string `json:"customOpenAIBaseURL,omitempty"`
}

// EnrichmentRequest is the input to a single enrichment.
type EnrichmentRequest struct {
	ContactInfo        ContactInfo      `json:"contactInfo"`
	ChatModel          *ModelSelector   `json:"chatModel,omitempty"`
	EmbeddingModel     *ModelSelector   `json:"embeddingModel,omitempty"`
	OptimizationMode   OptimizationMode `json:"optimizationMode,omitempty"`
	SystemInstructions string           `json:"systemInstructions,omitempty"`
}

// EnrichmentResult is the structured object parsed from the LLM completion.
// Values are kept as decoded JSON; no schema is enforced.
type EnrichmentResult struct {
	EnrichedContact  map[string]any `json:"enrichedContact,omitempty"`
	ConfidenceScores map[string]any `json:"confidenceScores,omitempty"`
	Sources          map[string]any `json:"sources,omitempty"`
}

// EnrichmentSummary describes what an enrichment added.
type EnrichmentSummary struct {
	FieldsEnriched    []string `json:"fieldsEnriched"`
	FieldsNotFound    []string `json:"fieldsNotFound"`
	OverallConfidence int      `json:"overallConfidence"`
}

// ModelInfo identifies the models used for a request.
type ModelInfo struct {
	ChatProvider      string `json:"chatProvider"`
	ChatModel         string `json:"chatModel"`
	EmbeddingProvider string `json:"embeddingProvider,omitempty"`
	EmbeddingModel    string `json:"embeddingModel,omitempty"`
}

// Usage records LLM token consumption and estimated cost.
type Usage struct {
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	CostUSD      float64 `json:"costUsd"`
}

// EnrichmentResponse is the full outcome of an enrichment.
type EnrichmentResponse struct {
	// EnrichedContact is the LLM's contact object, or the original contact
	// when the completion could not be parsed.
	EnrichedContact    any               `json:"enrichedContact"`
	ConfidenceScores   map[string]any    `json:"confidenceScores"`
	Sources            map[string]any    `json:"sources"`
	OriginalContact    ContactInfo       `json:"originalContact"`
	EnrichmentSummary  EnrichmentSummary `json:"enrichmentSummary"`
	SemanticSearchUsed bool              `json:"semanticSearchUsed"`
	RawResponse        string            `json:"rawResponse,omitempty"`
	Evidence           []Source          `json:"evidence"`
	OptimizationMode   OptimizationMode  `json:"optimizationMode"`
	Model              ModelInfo         `json:"model"`
	Usage              Usage             `json:"usage"`
	RunID              string            `json:"runId,omitempty"`
}

