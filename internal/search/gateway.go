package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/resilience"
)

// DefaultMaxResults is the per-call cap when a caller passes none.
const DefaultMaxResults = 5

// Options tunes a Gateway. Zero values take the defaults noted per field.
type Options struct {
	Timeout          time.Duration // 10s
	Retries          int           // 0
	RatePerSec       float64       // 0 disables throttling
	BreakerThreshold int           // 0 disables the breaker
	BreakerCooldown  time.Duration // 60s
	ResultsPerQuery  int           // 3
	PoolCap          int           // 5
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.BreakerThreshold < 0 {
		o.BreakerThreshold = 0
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = 60 * time.Second
	}
	if o.ResultsPerQuery <= 0 {
		o.ResultsPerQuery = 3
	}
	if o.PoolCap <= 0 {
		o.PoolCap = 5
	}
	return o
}

// Gateway runs searches against one backend. Every failure is soft: the
// caller gets an empty slice and the failure is logged. The optional
// circuit breaker is the only state carried between calls.
type Gateway struct {
	backend   Backend
	opts      Options
	breaker   *resilience.Breaker
	limiter   *rate.Limiter
	retry     resilience.RetryPolicy
	onFailure func(query string, err error)
}

// NewGateway creates a Gateway. A nil backend yields a gateway that always
// returns no results.
func NewGateway(backend Backend, opts Options) *Gateway {
	opts = opts.withDefaults()
	g := &Gateway{
		backend: backend,
		opts:    opts,
		retry: resilience.RetryPolicy{
			Attempts:   1 + opts.Retries,
			Backoff:    500 * time.Millisecond,
			MaxBackoff: 4 * time.Second,
			Jitter:     0.2,
			Name:       "search",
		},
	}
	if backend != nil && opts.BreakerThreshold > 0 {
		g.breaker = resilience.NewBreaker("search_"+backend.Name(), resilience.BreakerConfig{
			Threshold: opts.BreakerThreshold,
			Cooldown:  opts.BreakerCooldown,
		})
	}
	if opts.RatePerSec > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), 1)
	}
	return g
}

// OnFailure registers a hook called for every soft failure.
func (g *Gateway) OnFailure(fn func(query string, err error)) *Gateway {
	g.onFailure = fn
	return g
}

// Configured reports whether a backend is wired.
func (g *Gateway) Configured() bool {
	return g != nil && g.backend != nil
}

// Backend names the wired backend, or "" when unconfigured.
func (g *Gateway) Backend() string {
	if !g.Configured() {
		return ""
	}
	return g.backend.Name()
}

// Search returns at most maxResults hits for query. It never returns nil.
func (g *Gateway) Search(ctx context.Context, query string, maxResults int) []model.SearchResult {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if !g.Configured() {
		zap.L().Warn("search: backend not configured, skipping", zap.String("query", query))
		g.fail(query, ErrNotConfigured)
		return []model.SearchResult{}
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	start := time.Now()
	results, err := resilience.RetryVal(ctx, g.retry, func(ctx context.Context) ([]model.SearchResult, error) {
		if g.breaker == nil {
			return g.call(ctx, query, maxResults)
		}
		return resilience.DoVal(ctx, g.breaker, func(ctx context.Context) ([]model.SearchResult, error) {
			return g.call(ctx, query, maxResults)
		})
	})
	if err != nil {
		zap.L().Warn("search: query failed",
			zap.String("backend", g.backend.Name()),
			zap.String("query", query),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		g.fail(query, err)
		return []model.SearchResult{}
	}

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	if results == nil {
		results = []model.SearchResult{}
	}
	zap.L().Debug("search: query complete",
		zap.String("query", query),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results
}

func (g *Gateway) call(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return g.backend.Search(ctx, query, maxResults)
}

// Gather runs queries one after another, concatenates their hits in query
// order, and truncates the pool to the configured cap. Duplicate URLs
// across queries are kept.
func (g *Gateway) Gather(ctx context.Context, queries []string) []model.SearchResult {
	per, limit := 3, 5
	if g != nil {
		per, limit = g.opts.ResultsPerQuery, g.opts.PoolCap
	}

	pool := []model.SearchResult{}
	for _, q := range queries {
		pool = append(pool, g.Search(ctx, q, per)...)
	}
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

func (g *Gateway) fail(query string, err error) {
	if g != nil && g.onFailure != nil {
		g.onFailure(query, err)
	}
}
