package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/config"
	"github.com/sells-group/contact-enricher/internal/cost"
	"github.com/sells-group/contact-enricher/internal/pipeline"
	"github.com/sells-group/contact-enricher/internal/provider"
	"github.com/sells-group/contact-enricher/internal/scrape"
	"github.com/sells-group/contact-enricher/internal/search"
	"github.com/sells-group/contact-enricher/internal/store"
	"github.com/sells-group/contact-enricher/pkg/jina"
	"github.com/sells-group/contact-enricher/pkg/searxng"
)

// pipelineEnv holds everything the enrich, batch, and serve commands need.
type pipelineEnv struct {
	Store    store.Store // may be nil
	Registry *provider.Registry
	Metrics  *pipeline.Metrics
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline builds the provider registry, search gateway, extractor, run
// store, and the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	var catalog *provider.Catalog
	if cfg.Models.CatalogPath != "" {
		var err error
		if catalog, err = provider.LoadCatalog(cfg.Models.CatalogPath); err != nil {
			return nil, err
		}
	}
	registry, err := provider.NewRegistry(ctx, cfg.Models, catalog)
	if err != nil {
		return nil, eris.Wrap(err, "build provider registry")
	}
	if !registry.HasChat() {
		zap.L().Warn("no chat model providers configured; enrichment requests will fail")
	}

	jinaClient := newJinaClient(cfg.Jina)
	gw := search.NewGateway(newSearchBackend(cfg, jinaClient), gatewayOptions(cfg))
	scrapers := newScrapeChain(cfg, jinaClient)
	extractor := pipeline.NewExtractor(allowList(cfg.Extract), scrapers, cfg.Extract.MaxChars)

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	metrics := pipeline.NewMetrics()
	costs := cost.NewCalculator(cost.DefaultRates().WithOverrides(pricingOverrides(cfg.Pricing)))

	p := pipeline.New(cfg, gw, extractor, registry, st, costs, metrics)

	zap.L().Info("pipeline ready",
		zap.String("search", gw.Backend()),
		zap.Strings("scrapers", scrapers.Names()),
		zap.Strings("extract_domains", extractor.Domains()),
		zap.Strings("chat_providers", providerNames(registry.Providers().Chat)),
		zap.Strings("embedding_providers", providerNames(registry.Providers().Embedding)),
		zap.Bool("run_history", st != nil),
	)

	return &pipelineEnv{
		Store:    st,
		Registry: registry,
		Metrics:  metrics,
		Pipeline: p,
	}, nil
}

// initStore opens the configured run store. A nil store means run history
// is disabled.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open run store")
	}
	return st, nil
}

func newJinaClient(c config.JinaConfig) jina.Client {
	opts := []jina.Option{}
	if c.BaseURL != "" {
		opts = append(opts, jina.WithBaseURL(c.BaseURL))
	}
	if c.SearchBaseURL != "" {
		opts = append(opts, jina.WithSearchBaseURL(c.SearchBaseURL))
	}
	return jina.NewClient(c.Key, opts...)
}

// newSearchBackend returns nil when search is not configured, which the
// gateway treats as "no results".
func newSearchBackend(c *config.Config, jinaClient jina.Client) search.Backend {
	switch c.Search.Provider {
	case "searxng":
		if c.Search.SearxngURL == "" {
			zap.L().Warn("search.searxng_url not set, web search disabled")
			return nil
		}
		return search.NewSearxngBackend(searxng.NewClient(c.Search.SearxngURL,
			searxng.WithEngines(c.Search.Engines),
			searxng.WithSafeSearch(c.Search.SafeSearch),
			searxng.WithLanguage(c.Search.Language),
		))
	case "jina":
		return search.NewJinaBackend(jinaClient)
	default:
		return nil
	}
}

func gatewayOptions(c *config.Config) search.Options {
	return search.Options{
		Timeout:          time.Duration(c.Search.TimeoutSecs) * time.Second,
		Retries:          c.Search.Retries,
		RatePerSec:       c.Search.RatePerSec,
		BreakerThreshold: c.Search.BreakerThreshold,
		BreakerCooldown:  time.Duration(c.Search.BreakerResetSecs) * time.Second,
		ResultsPerQuery:  c.Pipeline.ResultsPerQuery,
		PoolCap:          c.Pipeline.PoolCap,
	}
}

// newScrapeChain builds the page fetchers: plain HTTP first, then Jina
// Reader when enabled and keyed.
func newScrapeChain(c *config.Config, jinaClient jina.Client) *scrape.Chain {
	timeout := time.Duration(c.Extract.TimeoutSecs) * time.Second
	local := []scrape.LocalOption{}
	if timeout > 0 {
		local = append(local, scrape.WithTimeout(timeout))
	}
	if c.Extract.UserAgent != "" {
		local = append(local, scrape.WithUserAgent(c.Extract.UserAgent))
	}

	scrapers := []scrape.Scraper{scrape.NewLocalScraper(local...)}
	if c.Extract.JinaFallback && c.Jina.Key != "" {
		scrapers = append(scrapers, scrape.NewJinaScraper(jinaClient, timeout))
	}
	return scrape.NewChain(scrapers...)
}

// allowList returns nil for an empty domain list so the extractor falls
// back to its defaults.
func allowList(c config.ExtractConfig) *scrape.AllowList {
	if len(c.AllowedDomains) == 0 {
		return nil
	}
	return scrape.NewAllowList(c.AllowedDomains)
}

func pricingOverrides(p config.PricingConfig) map[string]cost.ModelRate {
	out := make(map[string]cost.ModelRate, len(p.Models))
	for name, m := range p.Models {
		out[name] = cost.ModelRate{Input: m.Input, Output: m.Output}
	}
	return out
}

func providerNames(list []provider.ProviderModels) []string {
	names := make([]string, 0, len(list))
	for _, pm := range list {
		names = append(names, pm.Provider)
	}
	return names
}
