package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "mistral"
)

// OpenAIClient generates text through an OpenAI-compatible chat endpoint.
// Ollama serves one under /v1.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	baseURL     string
	temperature float32
}

// NewOllamaClient points an OpenAIClient at an Ollama server.
func NewOllamaClient(apiURL, model string, temperature float64) *OpenAIClient {
	if apiURL == "" {
		apiURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}

	baseURL := strings.TrimRight(apiURL, "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}

	// Ollama ignores the key but the SDK sends the header regardless.
	return NewOpenAIClient("ollama", model, baseURL, temperature)
}

// NewOpenAIClient creates a client for any OpenAI-compatible API.
func NewOpenAIClient(apiKey, model, baseURL string, temperature float64) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if temperature <= 0 {
		temperature = 0.1
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		baseURL:     config.BaseURL,
		temperature: float32(temperature),
	}
}

// Generate implements Generator.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := c.temperature
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: &temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", c.model, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
