package llm

import (
	"context"
	"fmt"

	"profitpulse/internal/config"
	"profitpulse/ports"
)

// ConfigFromApp maps the application AI settings onto the adapter config
func ConfigFromApp(ai config.AIConfig) Config {
	cfg := Config{
		Provider:    ai.Provider,
		Temperature: ai.Temperature,
		MaxTokens:   ai.MaxTokens,
		Timeout:     ai.Timeout,
	}
	switch ai.Provider {
	case config.ProviderMock:
		cfg.Model = config.ProviderMock
	case config.ProviderOpenAI:
		cfg.Model = ai.OpenAIModel
		cfg.APIKey = ai.OpenAIKey
		cfg.BaseURL = ai.OpenAIURL
	default:
		cfg.Model = ai.GeminiModel
		cfg.APIKey = ai.GeminiKey
	}
	return cfg
}

// NewClient returns the client for the configured provider, or nil without
// an error when no API key is set. The mock provider needs no key.
func NewClient(ctx context.Context, cfg Config) (ports.LLMClient, error) {
	if cfg.Provider == config.ProviderMock {
		return &MockLLMClient{}, nil
	}
	if cfg.APIKey == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		client, err := NewOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderGemini, "":
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}
