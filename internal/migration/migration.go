package migration

import (
	"context"

	"profitpulse/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.1.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createAnalysesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create analyses table")
	}

	if err := r.addAnalysesUsageColumns(ctx, db); err != nil {
		return errors.Wrap(err, "failed to add analyses usage columns")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// Drop removes every table this runner creates
func (r *MigrationRunner) Drop(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS analyses CASCADE`)
	return errors.Wrap(err, "failed to drop analyses table")
}

func (r *MigrationRunner) createAnalysesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY,
			provider VARCHAR(50) NOT NULL,
			model VARCHAR(100) NOT NULL DEFAULT '',
			row_count INTEGER NOT NULL DEFAULT 0,
			prompt TEXT NOT NULL,
			markdown TEXT NOT NULL,
			fallback BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

// addAnalysesUsageColumns upgrades tables created before token usage was recorded
func (r *MigrationRunner) addAnalysesUsageColumns(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'analyses' AND column_name = 'prompt_tokens'
			) THEN
				ALTER TABLE analyses ADD COLUMN prompt_tokens INTEGER NOT NULL DEFAULT 0;
			END IF;

			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'analyses' AND column_name = 'completion_tokens'
			) THEN
				ALTER TABLE analyses ADD COLUMN completion_tokens INTEGER NOT NULL DEFAULT 0;
			END IF;
		END $$;
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_provider ON analyses(provider)`,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return err
		}
	}
	return nil
}
