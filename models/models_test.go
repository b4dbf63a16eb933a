package models

import (
	"testing"
	"time"

	"profitpulse/domain/core"
)

func TestAnalysis_Validate(t *testing.T) {
	valid := func() Analysis {
		return Analysis{
			ID:        core.NewAnalysisID(),
			Provider:  "gemini",
			RowCount:  3,
			Markdown:  "## Common Issues",
			CreatedAt: time.Now(),
		}
	}

	tests := []struct {
		name        string
		mutate      func(a *Analysis)
		expectError bool
	}{
		{name: "Valid analysis", mutate: func(a *Analysis) {}, expectError: false},
		{name: "Valid - zero rows", mutate: func(a *Analysis) { a.RowCount = 0 }, expectError: false},
		{name: "Invalid - missing ID", mutate: func(a *Analysis) { a.ID = "" }, expectError: true},
		{name: "Invalid - blank markdown", mutate: func(a *Analysis) { a.Markdown = "  \n" }, expectError: true},
		{name: "Invalid - negative rows", mutate: func(a *Analysis) { a.RowCount = -1 }, expectError: true},
		{name: "Invalid - no timestamp", mutate: func(a *Analysis) { a.CreatedAt = time.Time{} }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid()
			tt.mutate(&a)
			err := a.Validate()

			if tt.expectError && err == nil {
				t.Errorf("Expected error for %s, got nil", tt.name)
			}

			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error for %s: %v", tt.name, err)
			}
		})
	}
}

func TestAnalysis_TotalTokens(t *testing.T) {
	a := Analysis{PromptTokens: 120, CompletionTokens: 30}
	if got := a.TotalTokens(); got != 150 {
		t.Errorf("TotalTokens() = %d, want 150", got)
	}
}
