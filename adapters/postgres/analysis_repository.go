package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"profitpulse/domain/core"
	"profitpulse/internal/errors"
	"profitpulse/models"
	"profitpulse/ports"

	"github.com/jmoiron/sqlx"
)

const analysisColumns = `id, provider, model, row_count, prompt, markdown, fallback,
	prompt_tokens, completion_tokens, created_at`

// AnalysisRepositoryImpl implements AnalysisRepository for PostgreSQL
type AnalysisRepositoryImpl struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new PostgreSQL analysis repository
func NewAnalysisRepository(db *sqlx.DB) ports.AnalysisRepository {
	return &AnalysisRepositoryImpl{db: db}
}

// Save inserts an analysis
func (r *AnalysisRepositoryImpl) Save(ctx context.Context, analysis *models.Analysis) error {
	if err := analysis.Validate(); err != nil {
		return errors.Wrap(errors.InvalidInput(err.Error()), "invalid analysis")
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO analyses (
			id, provider, model, row_count, prompt, markdown, fallback,
			prompt_tokens, completion_tokens, created_at
		) VALUES (
			:id, :provider, :model, :row_count, :prompt, :markdown, :fallback,
			:prompt_tokens, :completion_tokens, :created_at
		)
	`, analysis)
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to save analysis")
	}
	return nil
}

// Get retrieves a single analysis by ID
func (r *AnalysisRepositoryImpl) Get(ctx context.Context, id core.AnalysisID) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.GetContext(ctx, &analysis, `SELECT `+analysisColumns+` FROM analyses WHERE id = $1`, id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("analysis")
	}
	if err != nil {
		return nil, errors.Wrapf(errors.DatabaseError(err.Error()), "failed to get analysis %s", id)
	}
	return &analysis, nil
}

// List retrieves the newest analyses first
func (r *AnalysisRepositoryImpl) List(ctx context.Context, limit int) ([]*models.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}

	var analyses []*models.Analysis
	err := r.db.SelectContext(ctx, &analyses, `
		SELECT `+analysisColumns+`
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to list analyses")
	}
	return analyses, nil
}
