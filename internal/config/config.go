package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Jina     JinaConfig     `yaml:"jina" mapstructure:"jina"`
	Extract  ExtractConfig  `yaml:"extract" mapstructure:"extract"`
	Rank     RankConfig     `yaml:"rank" mapstructure:"rank"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Models   ModelsConfig   `yaml:"models" mapstructure:"models"`
	Pricing  PricingConfig  `yaml:"pricing" mapstructure:"pricing"`
	Auth     AuthConfig     `yaml:"auth" mapstructure:"auth"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SearchConfig configures the web search backend.
type SearchConfig struct {
	// Provider is "searxng" or "jina". Empty disables search.
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	SearxngURL  string  `yaml:"searxng_url" mapstructure:"searxng_url"`
	Engines     string  `yaml:"engines" mapstructure:"engines"`
	SafeSearch  int     `yaml:"safesearch" mapstructure:"safesearch"`
	Language    string  `yaml:"language" mapstructure:"language"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries     int     `yaml:"retries" mapstructure:"retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	// BreakerThreshold is the consecutive-failure count that opens the
	// search circuit breaker. 0 disables it.
	BreakerThreshold int `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// JinaConfig holds Jina AI Reader/Search settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// ExtractConfig configures page content extraction.
type ExtractConfig struct {
	AllowedDomains []string `yaml:"allowed_domains" mapstructure:"allowed_domains"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxChars       int      `yaml:"max_chars" mapstructure:"max_chars"`
	UserAgent      string   `yaml:"user_agent" mapstructure:"user_agent"`
	JinaFallback   bool     `yaml:"jina_fallback" mapstructure:"jina_fallback"`
}

// RankConfig configures semantic reranking.
type RankConfig struct {
	TopK         int `yaml:"top_k" mapstructure:"top_k"`
	MaxTextChars int `yaml:"max_text_chars" mapstructure:"max_text_chars"`
}

// PipelineConfig configures query planning and evidence limits.
type PipelineConfig struct {
	MaxQueries         int    `yaml:"max_queries" mapstructure:"max_queries"`
	ResultsPerQuery    int    `yaml:"results_per_query" mapstructure:"results_per_query"`
	PoolCap            int    `yaml:"pool_cap" mapstructure:"pool_cap"`
	PromptContentChars int    `yaml:"prompt_content_chars" mapstructure:"prompt_content_chars"`
	LLMTimeoutSecs     int    `yaml:"llm_timeout_secs" mapstructure:"llm_timeout_secs"`
	OptimizationMode   string `yaml:"optimization_mode" mapstructure:"optimization_mode"`
}

// ModelsConfig holds chat and embedding provider credentials.
type ModelsConfig struct {
	CatalogPath        string             `yaml:"catalog_path" mapstructure:"catalog_path"`
	Temperature        float64            `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens          int                `yaml:"max_tokens" mapstructure:"max_tokens"`
	PreferredChat      []string           `yaml:"preferred_chat" mapstructure:"preferred_chat"`
	PreferredEmbedding []string           `yaml:"preferred_embedding" mapstructure:"preferred_embedding"`
	OpenAI             KeyConfig          `yaml:"openai" mapstructure:"openai"`
	Groq               KeyConfig          `yaml:"groq" mapstructure:"groq"`
	Anthropic          KeyConfig          `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini             KeyConfig          `yaml:"gemini" mapstructure:"gemini"`
	DeepSeek           KeyConfig          `yaml:"deepseek" mapstructure:"deepseek"`
	OpenRouter         KeyConfig          `yaml:"openrouter" mapstructure:"openrouter"`
	Perplexity         KeyConfig          `yaml:"perplexity" mapstructure:"perplexity"`
	Ollama             URLConfig          `yaml:"ollama" mapstructure:"ollama"`
	LMStudio           URLConfig          `yaml:"lmstudio" mapstructure:"lmstudio"`
	CustomOpenAI       CustomOpenAIConfig `yaml:"custom_openai" mapstructure:"custom_openai"`
}

// KeyConfig is an API-key provider with an optional base URL override.
type KeyConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// URLConfig is a keyless local provider.
type URLConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// CustomOpenAIConfig configures an arbitrary OpenAI-compatible endpoint.
type CustomOpenAIConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	URL   string `yaml:"url" mapstructure:"url"`
	Model string `yaml:"model" mapstructure:"model"`
}

// PricingConfig holds per-provider token pricing keyed by model name.
type PricingConfig struct {
	Models map[string]ModelPricing `yaml:"models" mapstructure:"models"`
}

// ModelPricing holds per-model token pricing (USD per million tokens).
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// AuthConfig configures API key authentication for the HTTP API.
type AuthConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	RequireAuth bool   `yaml:"require_auth" mapstructure:"require_auth"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	CORSOrigins        []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	Version            string   `yaml:"version" mapstructure:"version"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BatchConfig configures bulk enrichment.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// envAliases maps config keys to the unprefixed environment variable names
// accepted by earlier deployments of the service.
var envAliases = map[string]string{
	"search.searxng_url":         "SEARXNG_URL",
	"jina.key":                   "JINA_API_KEY",
	"models.openai.key":          "OPENAI_API_KEY",
	"models.groq.key":            "GROQ_API_KEY",
	"models.anthropic.key":       "ANTHROPIC_API_KEY",
	"models.gemini.key":          "GEMINI_API_KEY",
	"models.deepseek.key":        "DEEPSEEK_API_KEY",
	"models.openrouter.key":      "OPENROUTER_API_KEY",
	"models.perplexity.key":      "PERPLEXITY_API_KEY",
	"models.ollama.url":          "OLLAMA_API_URL",
	"models.lmstudio.url":        "LM_STUDIO_API_URL",
	"models.custom_openai.key":   "CUSTOM_OPENAI_API_KEY",
	"models.custom_openai.url":   "CUSTOM_OPENAI_API_URL",
	"models.custom_openai.model": "CUSTOM_OPENAI_MODEL_NAME",
	"auth.api_key":               "API_KEY",
	"auth.require_auth":          "REQUIRE_AUTH",
	"store.database_url":         "DATABASE_URL",
}

// Load reads configuration from file and environment. An explicit path
// overrides the config file search.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.contact-enricher")
		}
	}

	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, alias := range envAliases {
		envKey := "ENRICH_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		if err := v.BindEnv(key, envKey, alias); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", alias)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.provider", "searxng")
	v.SetDefault("search.engines", "google,bing,duckduckgo")
	v.SetDefault("search.safesearch", 1)
	v.SetDefault("search.language", "en")
	v.SetDefault("search.timeout_secs", 10)
	v.SetDefault("search.retries", 0)
	v.SetDefault("search.rate_per_sec", 0)
	v.SetDefault("search.breaker_threshold", 0)
	v.SetDefault("search.breaker_reset_secs", 60)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("extract.allowed_domains", []string{"linkedin.com", "github.com", "crunchbase.com", "about.me"})
	v.SetDefault("extract.timeout_secs", 5)
	v.SetDefault("extract.max_chars", 2000)
	v.SetDefault("extract.user_agent", "Mozilla/5.0 (compatible; ContactEnrichmentBot/1.0)")
	v.SetDefault("extract.jina_fallback", false)
	v.SetDefault("rank.top_k", 8)
	v.SetDefault("rank.max_text_chars", 2000)
	v.SetDefault("pipeline.max_queries", 3)
	v.SetDefault("pipeline.results_per_query", 3)
	v.SetDefault("pipeline.pool_cap", 5)
	v.SetDefault("pipeline.prompt_content_chars", 1000)
	v.SetDefault("pipeline.llm_timeout_secs", 120)
	v.SetDefault("pipeline.optimization_mode", "balanced")
	v.SetDefault("models.temperature", 0.3)
	v.SetDefault("models.max_tokens", 4096)
	v.SetDefault("models.preferred_chat", []string{"anthropic", "ollama"})
	v.SetDefault("models.preferred_embedding", []string{"ollama"})
	v.SetDefault("models.custom_openai.url", "https://api.openai.com/v1")
	v.SetDefault("models.custom_openai.model", "gpt-3.5-turbo")
	v.SetDefault("auth.require_auth", true)
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.request_timeout_secs", 180)
	v.SetDefault("server.version", "1.0.0")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "enricher.db")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks the settings a given command mode depends on.
func (c *Config) Validate(mode string) error {
	switch mode {
	case "serve":
		if c.Auth.RequireAuth && c.Auth.APIKey == "" {
			return eris.New("config: auth.api_key is required when auth.require_auth is set (ENRICH_AUTH_API_KEY or API_KEY)")
		}
		if c.Server.Port <= 0 {
			return eris.Errorf("config: invalid server.port %d", c.Server.Port)
		}
	case "store":
		switch c.Store.Driver {
		case "sqlite", "none", "":
		case "postgres":
			if c.Store.DatabaseURL == "" {
				return eris.New("config: store.database_url is required for postgres (ENRICH_STORE_DATABASE_URL or DATABASE_URL)")
			}
		default:
			return eris.Errorf("config: unsupported store driver %q", c.Store.Driver)
		}
	}

	switch c.Pipeline.OptimizationMode {
	case "", "speed", "balanced":
	default:
		return eris.Errorf("config: unsupported pipeline.optimization_mode %q", c.Pipeline.OptimizationMode)
	}
	switch c.Search.Provider {
	case "", "searxng", "jina":
	default:
		return eris.Errorf("config: unsupported search.provider %q", c.Search.Provider)
	}

	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
