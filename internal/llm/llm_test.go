package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omriShneor/meeting_assistant/internal/config"
)

func TestNewOllamaClient(t *testing.T) {
	tests := []struct {
		name          string
		apiURL        string
		model         string
		expectedURL   string
		expectedModel string
	}{
		{"defaults", "", "", "http://localhost:11434/v1", "mistral"},
		{"trailing slash", "http://ollama:11434/", "llama3", "http://ollama:11434/v1", "llama3"},
		{"already versioned", "http://ollama:11434/v1", "mistral", "http://ollama:11434/v1", "mistral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOllamaClient(tt.apiURL, tt.model, 0)
			assert.Equal(t, tt.expectedURL, c.baseURL)
			assert.Equal(t, tt.expectedModel, c.model)
			assert.InDelta(t, 0.1, c.temperature, 0.0001)
		})
	}
}

func TestOpenAIClient_Generate(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "mistral", req.Model)
		require.Len(t, req.Messages, 1)
		gotPrompt = req.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "mistral",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"intent\":\"help\"}"}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, "mistral", 0.2)
	text, err := c.Generate(context.Background(), "what can you do")

	require.NoError(t, err)
	assert.Equal(t, `{"intent":"help"}`, text)
	assert.Equal(t, "what can you do", gotPrompt)
}

func TestOpenAIClient_GenerateErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"model not loaded","type":"server_error"}}`))
		}))
		defer server.Close()

		_, err := NewOllamaClient(server.URL, "", 0).Generate(context.Background(), "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to call mistral")
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
		}))
		defer server.Close()

		_, err := NewOllamaClient(server.URL, "", 0).Generate(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestAnthropicClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "Why do programmers "}, {"type": "text", "text": "prefer dark mode?"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 8}
		}`))
	}))
	defer server.Close()

	c := NewAnthropicClient("test-key", "", 0, anthropic.WithBaseURL(server.URL))
	assert.Equal(t, defaultAnthropicModel, c.model)

	text, err := c.Generate(context.Background(), "tell me a joke")
	require.NoError(t, err)
	assert.Equal(t, "Why do programmers prefer dark mode?", text)
}

func TestWithTimeout(t *testing.T) {
	slow := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
			return "late", nil
		}
	})

	_, err := WithTimeout(slow, 20*time.Millisecond).Generate(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "timed out")

	fast := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "ok:" + prompt, nil
	})
	text, err := WithTimeout(fast, time.Second).Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok:x", text)

	assert.NotNil(t, WithTimeout(fast, 0))
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{LLMProvider: config.ProviderOllama, GenerationTimeout: time.Second}
	g, model, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.NotNil(t, g)
	assert.Equal(t, "mistral", model)

	_, _, err = NewFromConfig(&config.Config{LLMProvider: config.ProviderAnthropic})
	assert.Error(t, err)

	_, _, err = NewFromConfig(&config.Config{LLMProvider: "bard"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown LLM_PROVIDER")
}
