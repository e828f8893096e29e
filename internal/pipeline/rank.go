package pipeline

import (
	"context"
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/internal/provider"
)

// DefaultTopK is the evidence budget after ranking.
const DefaultTopK = 8

// Ranker reorders evidence by cosine similarity between an identity query
// and each candidate's text.
type Ranker struct {
	topK     int
	maxChars int
}

// NewRanker creates a Ranker. Non-positive values take the defaults.
func NewRanker(topK, maxChars int) *Ranker {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Ranker{topK: topK, maxChars: maxChars}
}

// Rank returns results sorted by descending similarity, truncated to the top
// K, each carrying a SemanticScore. With no embedder, an empty semantic
// query, or no results, the input is returned as is. On any embedding
// failure the input is returned unchanged together with an error wrapping
// ErrEmbeddingFailed.
func (r *Ranker) Rank(ctx context.Context, contact model.ContactInfo, results []model.SearchResult, emb provider.Embedder) ([]model.SearchResult, error) {
	query := contact.SemanticQuery()
	if emb == nil || query == "" || len(results) == 0 {
		return results, nil
	}

	queryVec, err := emb.EmbedQuery(ctx, query)
	if err != nil {
		return results, eris.Wrapf(ErrEmbeddingFailed, "embed query: %v", err)
	}

	texts := make([]string, len(results))
	for i, res := range results {
		texts[i] = r.candidateText(res)
	}
	docVecs, err := emb.EmbedDocuments(ctx, texts)
	if err != nil {
		return results, eris.Wrapf(ErrEmbeddingFailed, "embed documents: %v", err)
	}
	if len(docVecs) != len(results) {
		return results, eris.Wrapf(ErrEmbeddingFailed, "got %d vectors for %d documents", len(docVecs), len(results))
	}

	scores := make([]float64, len(results))
	for i, vec := range docVecs {
		if len(vec) != len(queryVec) {
			return results, eris.Wrapf(ErrEmbeddingFailed, "vector %d has dimension %d, query has %d", i, len(vec), len(queryVec))
		}
		scores[i] = cosine(queryVec, vec)
	}

	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if len(order) > r.topK {
		order = order[:r.topK]
	}

	ranked := make([]model.SearchResult, len(order))
	for i, idx := range order {
		item := results[idx]
		score := clamp01(scores[idx])
		item.SemanticScore = &score
		ranked[i] = item
	}
	return ranked, nil
}

func (r *Ranker) candidateText(res model.SearchResult) string {
	full := ""
	if res.FullContent != nil {
		full = *res.FullContent
	}
	return truncate(res.Title+" "+res.Content+" "+full, r.maxChars)
}

// cosine returns the cosine similarity of a and b, or 0 when either has
// zero norm. Callers guarantee equal lengths.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
