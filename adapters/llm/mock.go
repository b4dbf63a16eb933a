package llm

import (
	"context"
	"sync"

	"profitpulse/ports"
)

// MockLLMClient returns a canned analysis. It backs LLM_PROVIDER=mock.
type MockLLMClient struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors

	mu    sync.Mutex
	calls int
}

// Provider returns "mock"
func (m *MockLLMClient) Provider() string { return "mock" }

// Calls reports how many completions were requested
func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockLLMClient) ChatCompletionWithUsage(ctx context.Context, model string, prompt string, maxTokens int) (*ports.LLMResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Error != nil {
		return nil, m.Error
	}
	content := m.Response
	if content == "" {
		// Default mock response
		content = "## Common Issues\n\n* Labor hours exceeded the quote\n\n## Recommendations\n\n* Re-baseline labor estimates"
	}
	return &ports.LLMResponse{
		Content: content,
		Usage: &ports.UsageData{
			PromptTokens:     len(prompt) / 4,
			CompletionTokens: len(content) / 4,
			TotalTokens:      (len(prompt) + len(content)) / 4,
			Model:            model,
			Provider:         "mock",
		},
	}, nil
}
