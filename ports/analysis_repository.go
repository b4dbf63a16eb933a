package ports

import (
	"context"

	"profitpulse/domain/core"
	"profitpulse/models"
)

// AnalysisRepository stores generated negative-margin analyses
type AnalysisRepository interface {
	// Save persists an analysis; the ID is assigned by the caller
	Save(ctx context.Context, analysis *models.Analysis) error

	// Get returns a single analysis or a NOT_FOUND error
	Get(ctx context.Context, id core.AnalysisID) (*models.Analysis, error)

	// List returns the newest analyses first
	List(ctx context.Context, limit int) ([]*models.Analysis, error)
}
