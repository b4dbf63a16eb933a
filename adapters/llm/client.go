package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"profitpulse/internal/errors"
	"profitpulse/ports"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// Config holds LLM adapter configuration
type Config struct {
	Provider    string        // "gemini" or "openai"
	Model       string        // e.g., "gemini-1.5-pro", "gpt-4o-mini"
	APIKey      string        // provider API key
	BaseURL     string        // Optional override for OpenAI-compatible endpoints
	Temperature float64       // 0.0-1.0, lower = more deterministic
	MaxTokens   int           // Max tokens in response
	Timeout     time.Duration // Request timeout
}

// OpenAIClient implements ports.LLMClient for OpenAI-compatible chat completions
type OpenAIClient struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	httpClient  *http.Client
}

// NewOpenAIClient creates an OpenAI client from config
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing OpenAI API key")
	}

	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &OpenAIClient{
		APIKey:      config.APIKey,
		BaseURL:     baseURL,
		Timeout:     config.Timeout,
		Temperature: config.Temperature,
		httpClient:  &http.Client{Timeout: config.Timeout},
	}, nil
}

// Provider returns "openai"
func (c *OpenAIClient) Provider() string { return "openai" }

// ChatCompletionWithUsage sends one system and one user message and reads the
// first choice plus token usage from the response
func (c *OpenAIClient) ChatCompletionWithUsage(ctx context.Context, model string, prompt string, maxTokens int) (*ports.LLMResponse, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("missing model")
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
	}
	body := reqBody{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: "You are a financial analyst reviewing project profitability. Answer in markdown."},
			{Role: "user", Content: prompt},
		},
		Temperature: c.Temperature,
		MaxTokens:   maxTokens,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client().Do(httpReq)
	if err != nil {
		return nil, errors.ExternalServiceError("openai", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := gjson.GetBytes(respRaw, "error.message").String()
		if detail == "" {
			detail = string(respRaw)
		}
		return nil, errors.ExternalServiceError("openai", fmt.Errorf("http %d: %s", resp.StatusCode, detail))
	}

	return parseChatCompletion(respRaw, model)
}

func (c *OpenAIClient) client() *http.Client {
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.Timeout}
	}
	return c.httpClient
}

// parseChatCompletion extracts the first choice and usage block
func parseChatCompletion(body []byte, requestedModel string) (*ports.LLMResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("openai response is not valid JSON")
	}
	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return nil, fmt.Errorf("openai response missing choices")
	}

	model := gjson.GetBytes(body, "model").String()
	if model == "" {
		model = requestedModel
	}

	usage := gjson.GetBytes(body, "usage")
	return &ports.LLMResponse{
		Content: content.String(),
		Usage: &ports.UsageData{
			PromptTokens:     int(usage.Get("prompt_tokens").Int()),
			CompletionTokens: int(usage.Get("completion_tokens").Int()),
			TotalTokens:      int(usage.Get("total_tokens").Int()),
			Model:            model,
			Provider:         "openai",
		},
	}, nil
}
