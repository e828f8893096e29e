package provider

import (
	"context"
	"strings"

	"github.com/revrost/go-openrouter"
	"github.com/rotisserie/eris"
)

func newOpenRouterClient(apiKey, baseURL string) *openrouter.Client {
	cfg := openrouter.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return openrouter.NewClientWithConfig(*cfg)
}

type openrouterChat struct {
	client   *openrouter.Client
	model    string
	settings Settings
}

func newOpenRouterChat(client *openrouter.Client, model string, s Settings) *openrouterChat {
	return &openrouterChat{client: client, model: model, settings: s}
}

func (c *openrouterChat) Provider() string { return OpenRouter }
func (c *openrouterChat) Model() string    { return c.model }

// Invoke sends the prompt as a single user message.
func (c *openrouterChat) Invoke(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model: c.model,
		Messages: []openrouter.ChatCompletionMessage{
			{
				Role:    openrouter.ChatMessageRoleUser,
				Content: openrouter.Content{Text: prompt},
			},
		},
		Temperature: float32(c.settings.Temperature),
		MaxTokens:   c.settings.MaxTokens,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "provider: openrouter %s", c.model)
	}
	if len(resp.Choices) == 0 {
		return nil, eris.Errorf("provider: openrouter %s returned no choices", c.model)
	}

	out := &Completion{Content: resp.Choices[0].Message.Content.Text}
	if resp.Usage != nil {
		out.Usage = Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
	}
	return out, nil
}
