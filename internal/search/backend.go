// Package search dispatches planned queries to a web search backend and
// normalizes the hits into evidence.
package search

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/resilience"
	"github.com/sells-group/contact-enricher/pkg/jina"
	"github.com/sells-group/contact-enricher/pkg/searxng"
)

// ErrNotConfigured is reported when no backend is wired.
var ErrNotConfigured = eris.New("search: backend not configured")

// Backend runs one web search.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error)
}

// SearxngBackend queries a SearxNG instance.
type SearxngBackend struct {
	client searxng.Client
}

// NewSearxngBackend wraps a SearxNG client.
func NewSearxngBackend(client searxng.Client) *SearxngBackend {
	return &SearxngBackend{client: client}
}

func (b *SearxngBackend) Name() string { return "searxng" }

// Search returns the first limit hits. Rate limiting and 5xx answers are
// reported as transient.
func (b *SearxngBackend) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	resp, err := b.client.Search(ctx, query)
	if err != nil {
		var se *searxng.StatusError
		if errors.As(err, &se) && resilience.IsTransientStatus(se.StatusCode) {
			return nil, resilience.NewTransientError(err, se.StatusCode)
		}
		return nil, err
	}

	hits := resp.Results
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, model.SearchResult{
			Title:   h.Title,
			URL:     h.URL,
			Content: h.Content,
			Engine:  h.Engine,
		})
	}
	return out, nil
}

// JinaBackend queries the Jina Search API.
type JinaBackend struct {
	client jina.Client
}

// NewJinaBackend wraps a Jina client.
func NewJinaBackend(client jina.Client) *JinaBackend {
	return &JinaBackend{client: client}
}

func (b *JinaBackend) Name() string { return "jina" }

// Search returns the first limit hits, using each hit's description as its
// snippet.
func (b *JinaBackend) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	resp, err := b.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	hits := resp.Data
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]model.SearchResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, model.SearchResult{
			Title:   h.Title,
			URL:     h.URL,
			Content: h.Snippet(),
			Engine:  "jina",
		})
	}
	return out, nil
}
