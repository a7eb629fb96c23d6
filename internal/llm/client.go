package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoAPIKey is returned when a backend is constructed without credentials
var ErrNoAPIKey = errors.New("API key is required")

// StructuredRequest is a single schema-constrained generation call
type StructuredRequest struct {
	Tier         ModelTier
	Model        string // overrides Tier when set
	SystemPrompt string
	UserPrompt   string
	Schema       *Schema
}

// Generator is a language-generation backend that emits JSON conforming to
// the requested schema.
type Generator interface {
	GenerateStructured(ctx context.Context, req StructuredRequest) ([]byte, error)
	// Close releases any resources held by the client
	Close() error
}

// Embedder turns text into a dense vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewGenerator creates the generation backend selected by config.Provider
func NewGenerator(ctx context.Context, config *Config, apiKey string) (Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderAnthropic:
		return NewAnthropicClient(config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// NewEmbedder creates the embedding backend. Embeddings are always served by
// Gemini regardless of the generation provider.
func NewEmbedder(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return NewGeminiClient(ctx, config, apiKey)
}

func modelFor(config *Config, req StructuredRequest) (string, error) {
	if req.Model != "" {
		return req.Model, nil
	}
	tier := req.Tier
	if tier == "" {
		tier = TierStandard
	}
	name := config.GetModel(tier)
	if name == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}
	return name, nil
}
