package provider

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sashabaranov/go-openai"
)

// newOpenAIClient builds a client for OpenAI or any compatible endpoint.
func newOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

type openaiChat struct {
	client   *openai.Client
	provider string
	model    string
	settings Settings
}

func newOpenAIChat(client *openai.Client, provider, model string, s Settings) *openaiChat {
	return &openaiChat{client: client, provider: provider, model: model, settings: s}
}

func (c *openaiChat) Provider() string { return c.provider }
func (c *openaiChat) Model() string    { return c.model }

func (c *openaiChat) Invoke(ctx context.Context, prompt string) (*Completion, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: float32(c.settings.Temperature),
	}
	if c.settings.MaxTokens > 0 {
		req.MaxTokens = c.settings.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "provider: %s %s", c.provider, c.model)
	}
	if len(resp.Choices) == 0 {
		return nil, eris.Errorf("provider: %s %s returned no choices", c.provider, c.model)
	}

	return &Completion{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

type openaiEmbedder struct {
	client   *openai.Client
	provider string
	model    string
}

func newOpenAIEmbedder(client *openai.Client, provider, model string) *openaiEmbedder {
	return &openaiEmbedder{client: client, provider: provider, model: model}
}

func (e *openaiEmbedder) Provider() string { return e.provider }
func (e *openaiEmbedder) Model() string    { return e.model }

func (e *openaiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *openaiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "provider: %s embed %s", e.provider, e.model)
	}
	if len(resp.Data) != len(texts) {
		return nil, eris.Errorf("provider: %s embed returned %d vectors for %d inputs", e.provider, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, d := range resp.Data {
		idx := d.Index
		if idx < 0 || idx >= len(out) || out[idx] != nil {
			idx = i
		}
		out[idx] = d.Embedding
	}
	return out, nil
}
