package app

import (
	"context"

	"github.com/stretchr/testify/mock"

	"profitpulse/domain/core"
	"profitpulse/models"
	"profitpulse/ports"
)

type mockLLMClient struct {
	mock.Mock
}

func (m *mockLLMClient) ChatCompletionWithUsage(ctx context.Context, model string, prompt string, maxTokens int) (*ports.LLMResponse, error) {
	args := m.Called(ctx, model, prompt, maxTokens)
	if resp := args.Get(0); resp != nil {
		return resp.(*ports.LLMResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLLMClient) Provider() string {
	return "gemini"
}

type mockAnalysisRepository struct {
	mock.Mock
}

func (m *mockAnalysisRepository) Save(ctx context.Context, analysis *models.Analysis) error {
	args := m.Called(ctx, analysis)
	return args.Error(0)
}

func (m *mockAnalysisRepository) Get(ctx context.Context, id core.AnalysisID) (*models.Analysis, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*models.Analysis), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalysisRepository) List(ctx context.Context, limit int) ([]*models.Analysis, error) {
	args := m.Called(ctx, limit)
	if list := args.Get(0); list != nil {
		return list.([]*models.Analysis), args.Error(1)
	}
	return nil, args.Error(1)
}
