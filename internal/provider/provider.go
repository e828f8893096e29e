// Package provider resolves chat and embedding models from a closed set of
// LLM providers.
package provider

import (
	"context"

	"github.com/rotisserie/eris"
)

// Provider names.
const (
	Anthropic    = "anthropic"
	OpenAI       = "openai"
	Groq         = "groq"
	DeepSeek     = "deepseek"
	Gemini       = "gemini"
	OpenRouter   = "openrouter"
	Perplexity   = "perplexity"
	Ollama       = "ollama"
	LMStudio     = "lmstudio"
	CustomOpenAI = "custom_openai"
)

// Known lists every provider name the registry understands.
var Known = []string{Anthropic, OpenAI, Groq, DeepSeek, Gemini, OpenRouter, Perplexity, Ollama, LMStudio, CustomOpenAI}

var (
	// ErrUnknownProvider is returned for a provider that is not registered.
	ErrUnknownProvider = eris.New("provider: unknown provider")
	// ErrUnknownModel is returned for a model the provider does not offer.
	ErrUnknownModel = eris.New("provider: unknown model")
	// ErrNoChatProvider is returned when no chat provider is configured.
	ErrNoChatProvider = eris.New("provider: no chat model providers available")
)

// Usage is the token consumption of one completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Completion is the text returned by a chat model.
type Completion struct {
	Content string
	Usage   Usage
}

// ChatModel turns a prompt into a completion.
type ChatModel interface {
	Provider() string
	Model() string
	Invoke(ctx context.Context, prompt string) (*Completion, error)
}

// Embedder turns text into vectors.
type Embedder interface {
	Provider() string
	Model() string
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Settings are shared by every chat model.
type Settings struct {
	Temperature float64
	MaxTokens   int
}

func isKnown(name string) bool {
	for _, k := range Known {
		if k == name {
			return true
		}
	}
	return false
}
