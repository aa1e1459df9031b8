package llm

import (
	"fmt"

	"github.com/omriShneor/meeting_assistant/internal/config"
)

// NewFromConfig builds the configured Generator, bounded by the configured timeout.
func NewFromConfig(cfg *config.Config) (Generator, string, error) {
	var (
		g     Generator
		model string
	)

	switch cfg.LLMProvider {
	case config.ProviderOllama, "":
		c := NewOllamaClient(cfg.OllamaAPIURL, cfg.OllamaModel, cfg.LLMTemperature)
		g, model = c, c.model
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, "", fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		c := NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.LLMTemperature)
		g, model = c, c.model
	default:
		return nil, "", fmt.Errorf("unknown LLM_PROVIDER: %s (supported: ollama, anthropic)", cfg.LLMProvider)
	}

	return WithTimeout(g, cfg.GenerationTimeout), model, nil
}
