package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"profitpulse/internal/errors"
	"profitpulse/ports"
)

// GeminiClient implements ports.LLMClient on the Gemini API
type GeminiClient struct {
	client      *genai.Client
	temperature float64
	timeout     time.Duration
}

// NewGeminiClient creates a Gemini client from config
func NewGeminiClient(ctx context.Context, config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing Gemini API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		temperature: config.Temperature,
		timeout:     config.Timeout,
	}, nil
}

// Provider returns "gemini"
func (c *GeminiClient) Provider() string { return "gemini" }

// ChatCompletionWithUsage generates content for a single user prompt
func (c *GeminiClient) ChatCompletionWithUsage(ctx context.Context, model string, prompt string, maxTokens int) (*ports.LLMResponse, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("missing model")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(c.temperature)),
	}
	if maxTokens > 0 {
		genConfig.MaxOutputTokens = int32(maxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, errors.ExternalServiceError("gemini", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, errors.ExternalServiceError("gemini", fmt.Errorf("empty response from %s", model))
	}

	usage := &ports.UsageData{Model: model, Provider: "gemini"}
	if resp.ModelVersion != "" {
		usage.Model = resp.ModelVersion
	}
	if md := resp.UsageMetadata; md != nil {
		usage.PromptTokens = int(md.PromptTokenCount)
		usage.CompletionTokens = int(md.CandidatesTokenCount)
		usage.TotalTokens = int(md.TotalTokenCount)
	}

	return &ports.LLMResponse{Content: text, Usage: usage}, nil
}
