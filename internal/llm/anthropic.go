package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultMaxTokens      = 1024
)

// AnthropicClient generates text with the Anthropic Messages API.
type AnthropicClient struct {
	client      *anthropic.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewAnthropicClient creates a new Anthropic client. Options are passed to the SDK.
func NewAnthropicClient(apiKey, model string, temperature float64, opts ...anthropic.ClientOption) *AnthropicClient {
	if model == "" {
		model = defaultAnthropicModel
	}
	if temperature <= 0 {
		temperature = 0.1
	}

	return &AnthropicClient{
		client:      anthropic.NewClient(apiKey, opts...),
		model:       model,
		temperature: float32(temperature),
		maxTokens:   defaultMaxTokens,
	}
}

// Generate implements Generator.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := c.temperature
	req := anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(prompt)},
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: &temperature,
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text += *block.Text
		}
	}
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
