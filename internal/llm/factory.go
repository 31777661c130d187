package llm

import (
	"fmt"

	"github.com/GerritGeeraerts/data-explorer/internal/config"
)

// NewTextGenerator creates the appropriate TextGenerator for the configured
// provider.
func NewTextGenerator(cfg config.LLMConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			SiteURL:     cfg.SiteURL,
			SiteName:    cfg.SiteName,
		}), nil
	case "ollama":
		return NewOllamaClient(OllamaConfig{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}
