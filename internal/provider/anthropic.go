package provider

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/pkg/anthropic"
)

type anthropicChat struct {
	client   anthropic.Client
	model    string
	settings Settings
}

func newAnthropicChat(client anthropic.Client, model string, s Settings) *anthropicChat {
	return &anthropicChat{client: client, model: model, settings: s}
}

func (c *anthropicChat) Provider() string { return Anthropic }
func (c *anthropicChat) Model() string    { return c.model }

func (c *anthropicChat) Invoke(ctx context.Context, prompt string) (*Completion, error) {
	temp := c.settings.Temperature
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   int64(c.settings.MaxTokens),
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "provider: anthropic %s", c.model)
	}

	return &Completion{
		Content: resp.Text(),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}
