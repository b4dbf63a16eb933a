package models

import (
	"fmt"
	"strings"
	"time"

	"profitpulse/domain/core"
)

// Analysis is one generated negative-margin review
type Analysis struct {
	ID               core.AnalysisID `json:"id" db:"id"`
	Provider         string          `json:"provider" db:"provider"` // 'gemini', 'openai', 'placeholder'
	Model            string          `json:"model" db:"model"`
	RowCount         int             `json:"row_count" db:"row_count"`
	Prompt           string          `json:"prompt" db:"prompt"`
	Markdown         string          `json:"markdown" db:"markdown"`
	Fallback         bool            `json:"fallback" db:"fallback"`
	PromptTokens     int             `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int             `json:"completion_tokens" db:"completion_tokens"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`

	// HTML is the rendered markdown; it is not stored
	HTML string `json:"html,omitempty" db:"-"`
}

// TotalTokens sums prompt and completion usage
func (a *Analysis) TotalTokens() int {
	return a.PromptTokens + a.CompletionTokens
}

// Validate checks the fields a repository requires before saving
func (a *Analysis) Validate() error {
	if a.ID.String() == "" {
		return fmt.Errorf("analysis ID is required")
	}
	if strings.TrimSpace(a.Markdown) == "" {
		return fmt.Errorf("analysis markdown is empty")
	}
	if a.RowCount < 0 {
		return fmt.Errorf("row count cannot be negative: %d", a.RowCount)
	}
	if a.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	return nil
}
