package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sells-group/contact-enricher/internal/model"
)

// DefaultPromptContentChars caps the full page text quoted per evidence item.
const DefaultPromptContentChars = 1000

// DefaultSystemInstructions apply when the caller supplies none.
const DefaultSystemInstructions = "Only return enriched data that confidently matches the provided input. Do not guess or fabricate information. If information is ambiguous or inconsistent, reflect that in the confidence scores and consider excluding the field entirely."

// PromptInput is everything the enrichment prompt depends on.
type PromptInput struct {
	Contact            model.ContactInfo
	Evidence           []model.SearchResult
	SystemInstructions string
	// Ranked adds the hints telling the model the evidence is ordered by
	// relevance.
	Ranked bool
	// ContentChars caps quoted full page text. Zero means
	// DefaultPromptContentChars.
	ContentChars int
}

const promptRole = `You are a professional contact enrichment AI. Your job is to enrich contact information with accurate, verified details based on web search results.`

const promptMatchingRules = `### Matching & Priority Rules:
- If **email or phone** is provided, treat it as the **primary identifier**.
  - **First**, try to match search results based on **email or phone**.
  - **Only if a match is found**, proceed to validate with **secondary identifiers** such as name, title, company, location, etc.
  - If the secondary identifiers (like name or title) do not align, reduce the confidence or exclude those conflicting fields.
- If **only name** is available, proceed with caution and clearly reflect uncertainty in the confidence scores.
- If no solid match can be made based on **email or phone**, **do not include** enriched data, or include it with **very low confidence**.`

const promptInclusionRules = `### Data Inclusion Rules:
- Only include fields where you have **reasonable confidence** based on actual search results.
- **Do not invent or guess** data. If a field is not found or not verifiable, exclude it.
- Include the **source URL** for each enriched data point.
- Confidence scores must range from **0 to 100** and reflect how sure you are that the information belongs to the same person.`

const promptRankedHint = `- Search results have been semantically ranked by relevance - prioritize higher-ranked results.`

const promptFormat = `### IMPORTANT: Response Format Instructions
**YOU MUST RESPOND WITH ONLY THE JSON OBJECT. DO NOT INCLUDE ANY EXPLANATION, INTRODUCTION, OR CONCLUSION TEXT.**

**DO NOT START WITH PHRASES LIKE:**
- "Based on the provided information..."
- "Here is the enriched contact data..."
- "The following JSON object..."

**DO NOT END WITH EXPLANATIONS OR DESCRIPTIONS**

**RESPOND WITH VALID JSON ONLY - START WITH { AND END WITH }**

Return exactly this JSON structure with no additional text:`

const promptSchema = `{
  "enrichedContact": {
    "name": "string",
    "email": "string",
    "title": "string",
    "company": "string",
    "industry": "string",
    "location": "string",
    "bio": "string",
    "skills": ["string"],
    "socialProfiles": {
      "linkedin": "string",
      "github": "string",
      "twitter": "string",
      "personalBlog": "string"
    },
    "phone": "string"
  },
  "confidenceScores": {
    "name": 95,
    "email": 100,
    "title": 85,
    "company": 90,
    "industry": 75,
    "location": 70,
    "bio": 60,
    "skills": 65,
    "socialProfiles": {
      "linkedin": 80,
      "github": 50,
      "twitter": 40,
      "personalBlog": 30
    },
    "phone": 20
  },
  "sources": {
    "name": "Original input or verified source URL",
    "company": "LinkedIn profile or company site URL",
    "title": "Company website or job listing URL",
    "industry": "Crunchbase or similar data source",
    "socialProfiles": "Web search results"
  }
}`

const promptFinalRequirements = `### Final Requirements:
- **RESPOND WITH ONLY VALID JSON - NO EXPLANATORY TEXT**
- Only include fields where you have **reasonable confidence** based on the **actual search results**
- Confidence scores must range from **0 to 100**
- If search results do not contain relevant information for a field, **do not include it**
- Never guess or fabricate information
- Include **source URLs** for each enriched field
- Always prioritize **accuracy over completeness**`

// BuildPrompt renders the enrichment instruction. It is a pure function of in.
func BuildPrompt(in PromptInput) string {
	contentChars := in.ContentChars
	if contentChars <= 0 {
		contentChars = DefaultPromptContentChars
	}

	var b strings.Builder
	b.WriteString(promptRole)
	b.WriteString("\n\n")
	b.WriteString(promptMatchingRules)
	b.WriteString("\n\n")
	b.WriteString(promptInclusionRules)
	if in.Ranked {
		b.WriteString("\n")
		b.WriteString(promptRankedHint)
	}

	b.WriteString("\n\n### Original Contact Info:\n")
	b.WriteString(contactJSON(in.Contact))

	b.WriteString("\n\n### Web Search Results")
	if in.Ranked {
		b.WriteString(" (Semantically Ranked)")
	}
	b.WriteString(":\n")
	if len(in.Evidence) == 0 {
		b.WriteString("No search results were found.\n")
	}
	for i, r := range in.Evidence {
		writeEvidence(&b, i+1, r, contentChars)
	}

	b.WriteString("\n### System Instructions:\n")
	if strings.TrimSpace(in.SystemInstructions) != "" {
		b.WriteString(in.SystemInstructions)
	} else {
		b.WriteString(DefaultSystemInstructions)
	}

	b.WriteString("\n\n")
	b.WriteString(promptFormat)
	b.WriteString("\n\n")
	b.WriteString(promptSchema)
	b.WriteString("\n\n")
	b.WriteString(promptFinalRequirements)
	return b.String()
}

func writeEvidence(b *strings.Builder, n int, r model.SearchResult, contentChars int) {
	fmt.Fprintf(b, "\n%d. Title: %s\n", n, r.Title)
	fmt.Fprintf(b, "   URL: %s\n", r.URL)
	fmt.Fprintf(b, "   Content: %s\n", r.Content)
	if r.HasFullContent() {
		fmt.Fprintf(b, "   Full Content: %s...\n", truncate(*r.FullContent, contentChars))
	}
	if r.SemanticScore != nil {
		fmt.Fprintf(b, "   Relevance Score: %.1f%%\n", *r.SemanticScore*100)
	}
}

// contactJSON pretty-prints c with two-space indentation and without HTML
// escaping, so addresses like a&b@example.com survive verbatim.
func contactJSON(c model.ContactInfo) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}
