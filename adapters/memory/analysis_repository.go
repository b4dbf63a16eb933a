// Package memory holds in-process repositories used when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"profitpulse/domain/core"
	"profitpulse/internal/errors"
	"profitpulse/models"
	"profitpulse/ports"
)

// AnalysisRepository keeps analyses in a map for the life of the process
type AnalysisRepository struct {
	mu       sync.RWMutex
	analyses map[core.AnalysisID]*models.Analysis
}

// NewAnalysisRepository creates an empty in-memory repository
func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{analyses: make(map[core.AnalysisID]*models.Analysis)}
}

var _ ports.AnalysisRepository = (*AnalysisRepository)(nil)

// Save stores a copy of analysis
func (r *AnalysisRepository) Save(ctx context.Context, analysis *models.Analysis) error {
	if err := analysis.Validate(); err != nil {
		return errors.Wrap(errors.InvalidInput(err.Error()), "invalid analysis")
	}

	stored := *analysis
	stored.HTML = ""

	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[analysis.ID] = &stored
	return nil
}

// Get returns a copy of the stored analysis
func (r *AnalysisRepository) Get(ctx context.Context, id core.AnalysisID) (*models.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.analyses[id]
	if !ok {
		return nil, errors.NotFound("analysis")
	}
	out := *stored
	return &out, nil
}

// List returns up to limit analyses, newest first
func (r *AnalysisRepository) List(ctx context.Context, limit int) ([]*models.Analysis, error) {
	r.mu.RLock()
	out := make([]*models.Analysis, 0, len(r.analyses))
	for _, stored := range r.analyses {
		a := *stored
		out = append(out, &a)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
