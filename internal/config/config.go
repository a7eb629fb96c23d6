// Package config loads the service and CLI configuration from defaults, an
// optional YAML or JSON file, and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/resume-tailor/internal/llm"
)

// EnvPrefix prefixes every environment override, e.g. TAILOR_PORT
const EnvPrefix = "TAILOR"

// Config is the full application configuration
type Config struct {
	Port      int    `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Parser     StrategyConfig   `mapstructure:"parser"`
	Tailor     StrategyConfig   `mapstructure:"tailor"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Similarity SimilarityConfig `mapstructure:"similarity"`

	DatabaseURL       string        `mapstructure:"database_url"`
	RedisURL          string        `mapstructure:"redis_url"`
	EmbeddingCacheTTL time.Duration `mapstructure:"embedding_cache_ttl"`

	Audit     AuditConfig     `mapstructure:"audit"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// StrategyConfig selects a parser or tailoring strategy
type StrategyConfig struct {
	Strategy string `mapstructure:"strategy"`
}

// LLMConfig configures the generation and embedding backends
type LLMConfig struct {
	Provider        string            `mapstructure:"provider"`
	Models          map[string]string `mapstructure:"models"`
	EmbeddingModel  string            `mapstructure:"embedding_model"`
	Temperature     float32           `mapstructure:"temperature"`
	MaxTokens       int64             `mapstructure:"max_tokens"`
	GeminiAPIKey    string            `mapstructure:"gemini_api_key"`
	AnthropicAPIKey string            `mapstructure:"anthropic_api_key"`
}

// SimilarityConfig tunes the responsibility-to-bullet matcher
type SimilarityConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	Threshold           float64 `mapstructure:"threshold"`
	MaxResponsibilities int     `mapstructure:"max_responsibilities"`
	MaxBullets          int     `mapstructure:"max_bullets"`
	Concurrency         int     `mapstructure:"concurrency"`
}

// AuditConfig sizes the in-memory audit log
type AuditConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// RateLimitConfig configures per-client request throttling
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	// Comma-separated client addresses that bypass or are always refused
	Whitelist string `mapstructure:"whitelist"`
	Blacklist string `mapstructure:"blacklist"`
}

func setDefaults(v *viper.Viper) {
	def := llm.DefaultGeminiConfig()

	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("parser.strategy", "heuristic")
	v.SetDefault("tailor.strategy", "stub")
	v.SetDefault("llm.provider", string(llm.ProviderGemini))
	v.SetDefault("llm.models", map[string]string{})
	v.SetDefault("llm.embedding_model", def.EmbeddingModel)
	v.SetDefault("llm.temperature", def.Temperature)
	v.SetDefault("llm.max_tokens", def.MaxTokens)
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.anthropic_api_key", "")
	v.SetDefault("similarity.enabled", true)
	v.SetDefault("similarity.threshold", 0.55)
	v.SetDefault("similarity.max_responsibilities", 10)
	v.SetDefault("similarity.max_bullets", 20)
	v.SetDefault("similarity.concurrency", 8)
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("embedding_cache_ttl", 24*time.Hour)
	v.SetDefault("audit.capacity", 1000)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("rate_limit.cleanup_interval", 5*time.Minute)
	v.SetDefault("rate_limit.whitelist", "")
	v.SetDefault("rate_limit.blacklist", "")
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names without the prefix
	bindings := map[string][]string{
		"llm.gemini_api_key":    {"TAILOR_LLM_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"llm.anthropic_api_key": {"TAILOR_LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		"database_url":          {"TAILOR_DATABASE_URL", "DATABASE_URL"},
		"redis_url":             {"TAILOR_REDIS_URL", "REDIS_URL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	var errs []error

	switch c.Parser.Strategy {
	case "heuristic", "model":
	default:
		errs = append(errs, fmt.Errorf("parser.strategy must be heuristic or model, got %q", c.Parser.Strategy))
	}
	switch c.Tailor.Strategy {
	case "stub", "model":
	default:
		errs = append(errs, fmt.Errorf("tailor.strategy must be stub or model, got %q", c.Tailor.Strategy))
	}
	switch llm.Provider(c.LLM.Provider) {
	case llm.ProviderGemini, llm.ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be gemini or anthropic, got %q", c.LLM.Provider))
	}

	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Similarity.Threshold < 0 || c.Similarity.Threshold > 1 {
		errs = append(errs, fmt.Errorf("similarity.threshold must be within [0,1], got %v", c.Similarity.Threshold))
	}
	if c.Similarity.MaxResponsibilities < 0 || c.Similarity.MaxBullets < 0 || c.Similarity.Concurrency < 0 {
		errs = append(errs, errors.New("similarity caps must be non-negative"))
	}
	if c.Audit.Capacity < 0 {
		errs = append(errs, errors.New("audit.capacity must be non-negative"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate_limit.requests_per_second and rate_limit.burst must be positive"))
	}

	usesModel := c.Parser.Strategy == "model" || c.Tailor.Strategy == "model"
	if usesModel && c.GenerationAPIKey() == "" {
		errs = append(errs, fmt.Errorf("a model strategy needs an API key for provider %q", c.LLM.Provider))
	}

	return errors.Join(errs...)
}

// GenerationAPIKey returns the key for the selected generation provider
func (c *Config) GenerationAPIKey() string {
	if llm.Provider(c.LLM.Provider) == llm.ProviderAnthropic {
		return c.LLM.AnthropicAPIKey
	}
	return c.LLM.GeminiAPIKey
}

// EmbeddingAPIKey returns the key for the embedding backend, which is always Gemini
func (c *Config) EmbeddingAPIKey() string {
	return c.LLM.GeminiAPIKey
}

// ModelConfig converts the LLM section into the backend configuration,
// starting from the provider defaults.
func (c *Config) ModelConfig() *llm.Config {
	out := llm.DefaultConfigFor(llm.Provider(c.LLM.Provider))
	for tier, model := range c.LLM.Models {
		if model != "" {
			out = out.WithModel(llm.ModelTier(strings.ToLower(tier)), model)
		}
	}
	if c.LLM.EmbeddingModel != "" {
		out.EmbeddingModel = c.LLM.EmbeddingModel
	}
	if c.LLM.Temperature > 0 {
		out.Temperature = c.LLM.Temperature
	}
	if c.LLM.MaxTokens > 0 {
		out.MaxTokens = c.LLM.MaxTokens
	}
	return out
}
