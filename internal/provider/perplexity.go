package provider

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/pkg/perplexity"
)

type perplexityChat struct {
	client   perplexity.Client
	model    string
	settings Settings
}

func (c *perplexityChat) Provider() string { return Perplexity }
func (c *perplexityChat) Model() string    { return c.model }

func (c *perplexityChat) Invoke(ctx context.Context, prompt string) (*Completion, error) {
	temp := c.settings.Temperature
	resp, err := c.client.Complete(ctx, perplexity.Request{
		Model:       c.model,
		Messages:    []perplexity.Message{perplexity.UserMessage(prompt)},
		Temperature: &temp,
		MaxTokens:   c.settings.MaxTokens,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "provider: perplexity %s", c.model)
	}
	text, ok := resp.Content()
	if !ok {
		return nil, eris.Errorf("provider: perplexity %s returned no choices", c.model)
	}

	return &Completion{
		Content: text,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
