package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Generator for Anthropic's Claude models.
// The schema is enforced through the prompt and checked on the way out.
type AnthropicClient struct {
	client anthropic.Client
	config *Config
}

// NewAnthropicClient creates a new Claude client
func NewAnthropicClient(config *Config, apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		config: config,
	}, nil
}

// GenerateStructured generates JSON matching req.Schema
func (c *AnthropicClient) GenerateStructured(ctx context.Context, req StructuredRequest) ([]byte, error) {
	modelName, err := modelFor(c.config, req)
	if err != nil {
		return nil, err
	}

	maxTokens := c.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(modelName),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(float64(c.config.Temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: BuildSchemaPrompt(req.UserPrompt, req.Schema)},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to call Claude API: %w", err)
	}

	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("no text content in Claude response")
	}

	out := []byte(CleanJSONBlock(sb.String()))
	if !json.Valid(out) {
		return nil, fmt.Errorf("model %s returned invalid JSON", modelName)
	}
	return out, nil
}

// Close is a no-op; the HTTP client holds no resources that need releasing
func (c *AnthropicClient) Close() error {
	return nil
}
