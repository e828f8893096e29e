package provider

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enricher/internal/config"
	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/pkg/anthropic"
	"github.com/sells-group/contact-enricher/pkg/perplexity"
)

// ProviderModels is one provider's available models, in catalog order.
type ProviderModels struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}

// Listing describes every available model and the defaults the registry
// would pick.
type Listing struct {
	Chat             []ProviderModels `json:"chat"`
	Embedding        []ProviderModels `json:"embedding"`
	DefaultChat      *ProviderModels  `json:"defaultChat,omitempty"`
	DefaultEmbedding *ProviderModels  `json:"defaultEmbedding,omitempty"`
}

// Registry maps (provider, model) pairs to ready-to-use models. It is
// built once and safe for concurrent use.
type Registry struct {
	cfg      config.ModelsConfig
	settings Settings

	chat       map[string][]ChatModel
	embed      map[string][]Embedder
	chatOrder  []string
	embedOrder []string
}

// NewRegistry registers every provider in catalog whose credentials or
// URL are present in cfg.
func NewRegistry(ctx context.Context, cfg config.ModelsConfig, catalog *Catalog) (*Registry, error) {
	if catalog == nil {
		var err error
		if catalog, err = DefaultCatalog(); err != nil {
			return nil, err
		}
	}

	r := &Registry{
		cfg: cfg,
		settings: Settings{
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
		chat:  make(map[string][]ChatModel),
		embed: make(map[string][]Embedder),
	}

	for _, entry := range catalog.Providers {
		chats, embeds, err := r.build(ctx, entry)
		if err != nil {
			return nil, err
		}
		if len(chats) > 0 {
			r.chat[entry.Name] = chats
			r.chatOrder = append(r.chatOrder, entry.Name)
		}
		if len(embeds) > 0 {
			r.embed[entry.Name] = embeds
			r.embedOrder = append(r.embedOrder, entry.Name)
		}
	}

	zap.L().Debug("provider: registry built",
		zap.Strings("chat", r.chatOrder),
		zap.Strings("embedding", r.embedOrder),
	)
	return r, nil
}

func (r *Registry) build(ctx context.Context, entry CatalogEntry) ([]ChatModel, []Embedder, error) {
	var (
		chats  []ChatModel
		embeds []Embedder
	)

	switch entry.Name {
	case Anthropic:
		kc := r.cfg.Anthropic
		if kc.Key == "" {
			return nil, nil, nil
		}
		var opts []anthropic.Option
		if kc.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(kc.BaseURL))
		}
		client := anthropic.NewClient(kc.Key, opts...)
		for _, m := range entry.Chat {
			chats = append(chats, newAnthropicChat(client, m, r.settings))
		}

	case OpenAI, Groq, DeepSeek:
		kc := r.keyConfig(entry.Name)
		if kc.Key == "" {
			return nil, nil, nil
		}
		client := newOpenAIClient(kc.Key, firstNonEmpty(kc.BaseURL, entry.BaseURL))
		for _, m := range entry.Chat {
			chats = append(chats, newOpenAIChat(client, entry.Name, m, r.settings))
		}
		for _, m := range entry.Embedding {
			embeds = append(embeds, newOpenAIEmbedder(client, entry.Name, m))
		}

	case Ollama, LMStudio:
		base, key := r.cfg.Ollama.URL, "ollama"
		if entry.Name == LMStudio {
			base, key = r.cfg.LMStudio.URL, "lm-studio"
		}
		if base == "" {
			return nil, nil, nil
		}
		client := newOpenAIClient(key, strings.TrimRight(base, "/")+"/v1")
		for _, m := range entry.Chat {
			chats = append(chats, newOpenAIChat(client, entry.Name, m, r.settings))
		}
		for _, m := range entry.Embedding {
			embeds = append(embeds, newOpenAIEmbedder(client, entry.Name, m))
		}

	case CustomOpenAI:
		cc := r.cfg.CustomOpenAI
		if cc.Key == "" || cc.Model == "" {
			return nil, nil, nil
		}
		chats = append(chats, newOpenAIChat(newOpenAIClient(cc.Key, cc.URL), CustomOpenAI, cc.Model, r.settings))

	case Gemini:
		kc := r.cfg.Gemini
		if kc.Key == "" {
			return nil, nil, nil
		}
		client, err := newGeminiClient(ctx, kc.Key, firstNonEmpty(kc.BaseURL, entry.BaseURL))
		if err != nil {
			return nil, nil, err
		}
		for _, m := range entry.Chat {
			chats = append(chats, &geminiChat{client: client, model: m, settings: r.settings})
		}
		for _, m := range entry.Embedding {
			embeds = append(embeds, &geminiEmbedder{client: client, model: m})
		}

	case OpenRouter:
		kc := r.cfg.OpenRouter
		if kc.Key == "" {
			return nil, nil, nil
		}
		client := newOpenRouterClient(kc.Key, firstNonEmpty(kc.BaseURL, entry.BaseURL))
		for _, m := range entry.Chat {
			chats = append(chats, newOpenRouterChat(client, m, r.settings))
		}

	case Perplexity:
		kc := r.cfg.Perplexity
		if kc.Key == "" {
			return nil, nil, nil
		}
		var opts []perplexity.Option
		if base := firstNonEmpty(kc.BaseURL, entry.BaseURL); base != "" {
			opts = append(opts, perplexity.WithBaseURL(base))
		}
		client := perplexity.NewClient(kc.Key, opts...)
		for _, m := range entry.Chat {
			chats = append(chats, &perplexityChat{client: client, model: m, settings: r.settings})
		}

	default:
		return nil, nil, eris.Wrapf(ErrUnknownProvider, "provider: %q", entry.Name)
	}

	return chats, embeds, nil
}

func (r *Registry) keyConfig(name string) config.KeyConfig {
	switch name {
	case OpenAI:
		return r.cfg.OpenAI
	case Groq:
		return r.cfg.Groq
	case DeepSeek:
		return r.cfg.DeepSeek
	}
	return config.KeyConfig{}
}

// ResolveChat picks the chat model for sel. A nil selection or empty
// provider uses the preferred provider list, then the first available.
// An empty model name uses the provider's first model.
func (r *Registry) ResolveChat(sel *model.ModelSelector) (ChatModel, error) {
	if sel != nil && sel.Provider == CustomOpenAI {
		return r.customChat(sel), nil
	}
	if len(r.chatOrder) == 0 {
		return nil, ErrNoChatProvider
	}

	var providerName, modelName string
	if sel != nil {
		providerName, modelName = sel.Provider, sel.Name
	}
	if providerName == "" {
		providerName = pickProvider(r.cfg.PreferredChat, r.chatOrder)
	}

	models, ok := r.chat[providerName]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownProvider, "provider: chat provider %q", providerName)
	}
	if modelName == "" {
		return models[0], nil
	}
	for _, m := range models {
		if m.Model() == modelName {
			return m, nil
		}
	}
	return nil, eris.Wrapf(ErrUnknownModel, "provider: %s chat model %q", providerName, modelName)
}

// customChat builds an OpenAI-compatible model from per-request
// credentials, falling back to the configured custom endpoint.
func (r *Registry) customChat(sel *model.ModelSelector) ChatModel {
	cc := r.cfg.CustomOpenAI
	key := firstNonEmpty(sel.CustomOpenAIKey, cc.Key)
	base := firstNonEmpty(sel.CustomOpenAIBaseURL, cc.URL)
	name := firstNonEmpty(sel.Name, cc.Model)
	return newOpenAIChat(newOpenAIClient(key, base), CustomOpenAI, name, r.settings)
}

// ResolveEmbedder picks the embedding model for sel. It returns nil
// without error when no embedding provider is available.
func (r *Registry) ResolveEmbedder(sel *model.ModelSelector) (Embedder, error) {
	if len(r.embedOrder) == 0 {
		return nil, nil
	}

	var providerName, modelName string
	if sel != nil {
		providerName, modelName = sel.Provider, sel.Name
	}
	if providerName == "" {
		providerName = pickProvider(r.cfg.PreferredEmbedding, r.embedOrder)
	}

	models, ok := r.embed[providerName]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownProvider, "provider: embedding provider %q", providerName)
	}
	if modelName == "" {
		return models[0], nil
	}
	for _, m := range models {
		if m.Model() == modelName {
			return m, nil
		}
	}
	return nil, eris.Wrapf(ErrUnknownModel, "provider: %s embedding model %q", providerName, modelName)
}

// Providers lists the available models and the defaults.
func (r *Registry) Providers() Listing {
	l := Listing{
		Chat:      []ProviderModels{},
		Embedding: []ProviderModels{},
	}
	for _, p := range r.chatOrder {
		pm := ProviderModels{Provider: p}
		for _, m := range r.chat[p] {
			pm.Models = append(pm.Models, m.Model())
		}
		l.Chat = append(l.Chat, pm)
	}
	for _, p := range r.embedOrder {
		pm := ProviderModels{Provider: p}
		for _, m := range r.embed[p] {
			pm.Models = append(pm.Models, m.Model())
		}
		l.Embedding = append(l.Embedding, pm)
	}

	if c, err := r.ResolveChat(nil); err == nil {
		l.DefaultChat = &ProviderModels{Provider: c.Provider(), Models: []string{c.Model()}}
	}
	if e, err := r.ResolveEmbedder(nil); err == nil && e != nil {
		l.DefaultEmbedding = &ProviderModels{Provider: e.Provider(), Models: []string{e.Model()}}
	}
	return l
}

// HasChat reports whether any chat provider is registered.
func (r *Registry) HasChat() bool {
	return len(r.chatOrder) > 0
}

func pickProvider(preferred, available []string) string {
	for _, p := range preferred {
		for _, a := range available {
			if p == a {
				return p
			}
		}
	}
	return available[0]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
