package model

// SearchResult is one web search hit, optionally carrying extracted page
// text and a semantic relevance score.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Engine  string `json:"engine"`

	// FullContent is set only for allow-listed domains. An empty string
	// means extraction was attempted and failed.
	FullContent *string `json:"fullContent,omitempty"`

	// SemanticScore is set only when the evidence was reranked.
	SemanticScore *float64 `json:"semanticScore,omitempty"`
}

// HasFullContent reports whether extraction produced page text.
func (r SearchResult) HasFullContent() bool {
	return r.FullContent != nil && *r.FullContent != ""
}

// Source is the provenance projection of a SearchResult returned to callers.
type Source struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Engine        string   `json:"engine"`
	SemanticScore *float64 `json:"semanticScore,omitempty"`
}

// Sources projects evidence to its provenance fields.
func Sources(results []SearchResult) []Source {
	out := make([]Source, 0, len(results))
	for _, r := range results {
		out = append(out, Source{
			Title:         r.Title,
			URL:           r.URL,
			Engine:        r.Engine,
			SemanticScore: r.SemanticScore,
		})
	}
	return out
}
