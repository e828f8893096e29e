package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enricher/internal/model"
)

func samplePromptInput() PromptInput {
	return PromptInput{
		Contact: model.ContactInfo{Name: "Ada Lovelace", Email: "ada&co@example.com"},
		Evidence: []model.SearchResult{
			{Title: "Ada | LinkedIn", URL: "https://linkedin.com/in/ada", Content: "Analyst", FullContent: strPtr("Profile text"), SemanticScore: floatPtr(0.875)},
			{Title: "Wikipedia", URL: "https://en.wikipedia.org/wiki/Ada", Content: "Mathematician"},
		},
	}
}

func TestBuildPrompt_SectionOrder(t *testing.T) {
	t.Parallel()

	p := BuildPrompt(samplePromptInput())
	markers := []string{
		"You are a professional contact enrichment AI.",
		"### Matching & Priority Rules:",
		"### Data Inclusion Rules:",
		"### Original Contact Info:",
		"### Web Search Results",
		"### System Instructions:",
		"### IMPORTANT: Response Format Instructions",
		`"enrichedContact": {`,
		"### Final Requirements:",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(p, m)
		require.GreaterOrEqual(t, idx, 0, "missing %q", m)
		assert.Greater(t, idx, last, "%q out of order", m)
		last = idx
	}
}

func TestBuildPrompt_ContactJSON(t *testing.T) {
	t.Parallel()

	p := BuildPrompt(samplePromptInput())
	assert.Contains(t, p, "{\n  \"name\": \"Ada Lovelace\",\n  \"email\": \"ada&co@example.com\"\n}")
	assert.NotContains(t, p, `\u0026`)
}

func TestBuildPrompt_Evidence(t *testing.T) {
	t.Parallel()

	p := BuildPrompt(samplePromptInput())
	assert.Contains(t, p, "1. Title: Ada | LinkedIn\n   URL: https://linkedin.com/in/ada\n   Content: Analyst\n   Full Content: Profile text...\n   Relevance Score: 87.5%\n")
	assert.Contains(t, p, "2. Title: Wikipedia\n   URL: https://en.wikipedia.org/wiki/Ada\n   Content: Mathematician\n")
	assert.Equal(t, 1, strings.Count(p, "Relevance Score:"))
	assert.Equal(t, 1, strings.Count(p, "Full Content:"))
}

func TestBuildPrompt_FullContentTruncated(t *testing.T) {
	t.Parallel()

	in := samplePromptInput()
	in.Evidence = []model.SearchResult{{Title: "t", URL: "u", FullContent: strPtr(strings.Repeat("a", 1500))}}

	p := BuildPrompt(in)
	assert.Contains(t, p, "Full Content: "+strings.Repeat("a", 1000)+"...\n")
	assert.NotContains(t, p, strings.Repeat("a", 1001))

	in.ContentChars = 10
	assert.Contains(t, BuildPrompt(in), "Full Content: "+strings.Repeat("a", 10)+"...\n")
}

func TestBuildPrompt_EmptyFullContentOmitted(t *testing.T) {
	t.Parallel()

	in := samplePromptInput()
	in.Evidence = []model.SearchResult{{Title: "t", URL: "u", FullContent: strPtr("")}}
	assert.NotContains(t, BuildPrompt(in), "Full Content:")
}

func TestBuildPrompt_ZeroScoreShown(t *testing.T) {
	t.Parallel()

	in := samplePromptInput()
	in.Evidence = []model.SearchResult{{Title: "t", URL: "u", SemanticScore: floatPtr(0)}}
	assert.Contains(t, BuildPrompt(in), "Relevance Score: 0.0%")
}

func TestBuildPrompt_SystemInstructions(t *testing.T) {
	t.Parallel()

	in := samplePromptInput()
	assert.Contains(t, BuildPrompt(in), DefaultSystemInstructions)

	in.SystemInstructions = "Prefer European sources."
	p := BuildPrompt(in)
	assert.Contains(t, p, "### System Instructions:\nPrefer European sources.")
	assert.NotContains(t, p, DefaultSystemInstructions)
}

func TestBuildPrompt_RankedHints(t *testing.T) {
	t.Parallel()

	in := samplePromptInput()
	p := BuildPrompt(in)
	assert.NotContains(t, p, "semantically ranked")
	assert.NotContains(t, p, "(Semantically Ranked)")

	in.Ranked = true
	p = BuildPrompt(in)
	assert.Contains(t, p, "Search results have been semantically ranked by relevance")
	assert.Contains(t, p, "### Web Search Results (Semantically Ranked):")
}

func TestBuildPrompt_NoEvidence(t *testing.T) {
	t.Parallel()

	in := samplePromptInput()
	in.Evidence = nil
	p := BuildPrompt(in)
	assert.Contains(t, p, "No search results were found.")
	assert.NotContains(t, p, "1. Title:")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	t.Parallel()

	in := samplePromptInput()
	assert.Equal(t, BuildPrompt(in), BuildPrompt(in))
}
