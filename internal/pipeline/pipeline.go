package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/config"
	"github.com/sells-group/contact-enricher/internal/cost"
	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/provider"
	"github.com/sells-group/contact-enricher/internal/search"
	"github.com/sells-group/contact-enricher/internal/store"
)

const defaultLLMTimeout = 120 * time.Second

// ModelResolver picks chat and embedding models for a request.
// *provider.Registry satisfies it.
type ModelResolver interface {
	ResolveChat(sel *model.ModelSelector) (provider.ChatModel, error)
	ResolveEmbedder(sel *model.ModelSelector) (provider.Embedder, error)
}

// Pipeline runs one enrichment per call. It holds no per-request state and
// is safe for concurrent use.
type Pipeline struct {
	cfg       config.PipelineConfig
	search    *search.Gateway
	extractor *Extractor
	ranker    *Ranker
	models    ModelResolver
	store     store.Store
	costCalc  *cost.Calculator
	metrics   *Metrics
}

// New creates a Pipeline. The store, cost calculator, and metrics may be nil.
func New(
	cfg *config.Config,
	gw *search.Gateway,
	extractor *Extractor,
	models ModelResolver,
	st store.Store,
	costCalc *cost.Calculator,
	metrics *Metrics,
) *Pipeline {
	p := &Pipeline{
		cfg:       cfg.Pipeline,
		search:    gw,
		extractor: extractor,
		ranker:    NewRanker(cfg.Rank.TopK, cfg.Rank.MaxTextChars),
		models:    models,
		store:     st,
		costCalc:  costCalc,
		metrics:   metrics,
	}
	if gw != nil {
		gw.OnFailure(func(string, error) { metrics.soft(SoftSearch) })
	}
	if extractor != nil {
		extractor.OnFailure(func(string, error) { metrics.soft(SoftExtraction) })
	}
	return p
}

// Enrich runs the full pipeline for one contact. Every stage before the
// chat model degrades softly; only an invalid contact, an unresolvable chat
// model, or a failed model invocation return an error. A completion that
// cannot be parsed yields a response carrying the original contact and the
// raw text.
func (p *Pipeline) Enrich(ctx context.Context, req model.EnrichmentRequest) (*model.EnrichmentResponse, error) {
	contact := req.ContactInfo
	log := zap.L().With(zap.String("name", contact.Name), zap.String("company", contact.Company))

	if !contact.HasIdentifyingInfo() {
		p.metrics.request(OutcomeInvalid)
		return nil, ErrInvalidContact
	}

	mode := p.mode(req.OptimizationMode)
	log.Info("pipeline: starting enrichment", zap.String("mode", string(mode)))

	chat, err := p.models.ResolveChat(req.ChatModel)
	if err != nil {
		p.metrics.request(OutcomeError)
		return nil, eris.Wrap(err, "pipeline: resolve chat model")
	}

	var embedder provider.Embedder
	if mode == model.ModeBalanced {
		embedder, err = p.models.ResolveEmbedder(req.EmbeddingModel)
		if err != nil {
			log.Warn("pipeline: embedding model unavailable, ranking disabled", zap.Error(err))
			p.metrics.soft(SoftEmbedding)
			embedder = nil
		}
	}

	runID := p.createRun(ctx, req, log)

	// Plan and search.
	var queries []string
	var evidence []model.SearchResult
	p.timed("search", func() {
		queries = PlanQueries(contact, p.cfg.MaxQueries)
		evidence = p.search.Gather(ctx, queries)
	})
	if len(evidence) == 0 {
		log.Warn("pipeline: no search evidence",
			zap.Strings("queries", queries),
			zap.Error(eris.Wrapf(ErrSearchUnavailable, "backend %q", p.search.Backend())),
		)
	}

	// Extract and rank.
	ranked := false
	if mode == model.ModeBalanced {
		if p.extractor != nil {
			p.timed("extract", func() {
				evidence = p.extractor.Apply(ctx, evidence)
			})
		}

		if embedder != nil {
			p.timed("rank", func() {
				out, rankErr := p.ranker.Rank(ctx, contact, evidence, embedder)
				if rankErr != nil {
					log.Warn("pipeline: semantic ranking failed, using search order", zap.Error(rankErr))
					p.metrics.soft(SoftEmbedding)
					return
				}
				evidence = out
				ranked = hasScores(evidence)
			})
		}
	}

	prompt := BuildPrompt(PromptInput{
		Contact:            contact,
		Evidence:           evidence,
		SystemInstructions: req.SystemInstructions,
		Ranked:             ranked,
		ContentChars:       p.cfg.PromptContentChars,
	})

	// One model call, no retries.
	var completion *provider.Completion
	p.timed("llm", func() {
		llmCtx, cancel := context.WithTimeout(ctx, p.llmTimeout())
		defer cancel()
		completion, err = chat.Invoke(llmCtx, prompt)
		if err == nil && completion == nil {
			err = eris.New("empty completion")
		}
	})
	if err != nil {
		wrapped := eris.Wrapf(ErrLLMInvocationFailed, "%s/%s: %v", chat.Provider(), chat.Model(), err)
		log.Error("pipeline: llm invocation failed", zap.Error(err))
		p.failRun(ctx, runID, wrapped, log)
		p.metrics.request(OutcomeError)
		return nil, wrapped
	}

	resp := &model.EnrichmentResponse{
		OriginalContact:    contact,
		SemanticSearchUsed: embedder != nil && hasScores(evidence),
		Evidence:           model.Sources(evidence),
		OptimizationMode:   mode,
		Model: model.ModelInfo{
			ChatProvider: chat.Provider(),
			ChatModel:    chat.Model(),
		},
		Usage: p.usage(chat, completion),
		RunID: runID,
	}
	if embedder != nil {
		resp.Model.EmbeddingProvider = embedder.Provider()
		resp.Model.EmbeddingModel = embedder.Model()
	}

	result, layer, parseErr := ParseCompletion(completion.Content)
	p.metrics.parsed(layer)
	outcome := OutcomeSuccess
	if parseErr != nil {
		log.Warn("pipeline: completion could not be parsed", zap.Error(parseErr))
		outcome = OutcomeMalformed
		resp.EnrichedContact = contact
		resp.ConfidenceScores = map[string]any{}
		resp.Sources = map[string]any{}
		resp.EnrichmentSummary = model.EnrichmentSummary{
			FieldsEnriched: []string{},
			FieldsNotFound: []string{},
		}
		resp.RawResponse = completion.Content
	} else {
		resp.EnrichmentSummary = Summarize(contact, result)
		resp.EnrichedContact = any(contact)
		if result.EnrichedContact != nil {
			resp.EnrichedContact = result.EnrichedContact
		}
		resp.ConfidenceScores = orEmpty(result.ConfidenceScores)
		resp.Sources = orEmpty(result.Sources)
	}

	p.completeRun(ctx, runID, resp, log)
	p.metrics.request(outcome)
	log.Info("pipeline: enrichment complete",
		zap.String("outcome", outcome),
		zap.String("parse_layer", string(layer)),
		zap.Int("evidence", len(evidence)),
		zap.Strings("fields_enriched", resp.EnrichmentSummary.FieldsEnriched),
		zap.Int("overall_confidence", resp.EnrichmentSummary.OverallConfidence),
		zap.Float64("cost_usd", resp.Usage.CostUSD),
	)
	return resp, nil
}

func (p *Pipeline) mode(requested model.OptimizationMode) model.OptimizationMode {
	switch requested {
	case model.ModeSpeed, model.ModeBalanced:
		return requested
	}
	if model.OptimizationMode(p.cfg.OptimizationMode) == model.ModeSpeed {
		return model.ModeSpeed
	}
	return model.ModeBalanced
}

func (p *Pipeline) llmTimeout() time.Duration {
	if p.cfg.LLMTimeoutSecs > 0 {
		return time.Duration(p.cfg.LLMTimeoutSecs) * time.Second
	}
	return defaultLLMTimeout
}

func (p *Pipeline) timed(stage string, fn func()) {
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	p.metrics.stage(stage, elapsed.Seconds())
	zap.L().Debug("pipeline: stage complete", zap.String("stage", stage), zap.Duration("elapsed", elapsed))
}

func (p *Pipeline) usage(chat provider.ChatModel, c *provider.Completion) model.Usage {
	u := model.Usage{
		InputTokens:  c.Usage.InputTokens,
		OutputTokens: c.Usage.OutputTokens,
	}
	if p.costCalc != nil {
		u.CostUSD = p.costCalc.Completion(chat.Provider(), chat.Model(), u.InputTokens, u.OutputTokens)
		p.metrics.cost(chat.Provider(), u.CostUSD)
	}
	return u
}

func (p *Pipeline) createRun(ctx context.Context, req model.EnrichmentRequest, log *zap.Logger) string {
	if p.store == nil {
		return ""
	}
	run, err := p.store.CreateRun(ctx, req)
	if err != nil {
		log.Warn("pipeline: failed to record run", zap.Error(err))
		p.metrics.soft(SoftStore)
		return ""
	}
	return run.ID
}

func (p *Pipeline) completeRun(ctx context.Context, runID string, resp *model.EnrichmentResponse, log *zap.Logger) {
	if p.store == nil || runID == "" {
		return
	}
	if err := p.store.CompleteRun(ctx, runID, resp); err != nil {
		log.Warn("pipeline: failed to complete run", zap.String("run_id", runID), zap.Error(err))
		p.metrics.soft(SoftStore)
	}
}

func (p *Pipeline) failRun(ctx context.Context, runID string, cause error, log *zap.Logger) {
	if p.store == nil || runID == "" {
		return
	}
	if err := p.store.FailRun(ctx, runID, cause.Error()); err != nil {
		log.Warn("pipeline: failed to mark run failed", zap.String("run_id", runID), zap.Error(err))
		p.metrics.soft(SoftStore)
	}
}

func hasScores(results []model.SearchResult) bool {
	for _, r := range results {
		if r.SemanticScore != nil {
			return true
		}
	}
	return false
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
