package provider

import (
	"context"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

func newGeminiClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "provider: gemini client")
	}
	return client, nil
}

type geminiChat struct {
	client   *genai.Client
	model    string
	settings Settings
}

func (c *geminiChat) Provider() string { return Gemini }
func (c *geminiChat) Model() string    { return c.model }

func (c *geminiChat) Invoke(ctx context.Context, prompt string) (*Completion, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(float32(c.settings.Temperature)),
		CandidateCount: 1,
	}
	if c.settings.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(c.settings.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, eris.Wrapf(err, "provider: gemini %s", c.model)
	}

	out := &Completion{Content: resp.Text()}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

type geminiEmbedder struct {
	client *genai.Client
	model  string
}

func (e *geminiEmbedder) Provider() string { return Gemini }
func (e *geminiEmbedder) Model() string    { return e.model }

func (e *geminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *geminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "provider: gemini embed %s", e.model)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, eris.Errorf("provider: gemini embed returned %d vectors for %d inputs", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}
