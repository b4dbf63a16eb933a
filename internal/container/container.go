package container

import (
	"context"
	"fmt"

	"profitpulse/adapters/llm"
	"profitpulse/adapters/memory"
	"profitpulse/adapters/postgres"
	"profitpulse/app"
	"profitpulse/internal"
	"profitpulse/internal/config"
	"profitpulse/internal/errors"
	"profitpulse/internal/migration"
	"profitpulse/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	AnalysisRepo ports.AnalysisRepository

	// Data and AI components
	Loader    ports.TableLoader
	LLMClient ports.LLMClient
	Analyzer  *app.NegativeMarginAnalyzer
}

// New creates a container with in-memory storage. Call InitWithDatabase to
// switch analyses to postgres before building the analyzer.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	c := &Container{
		Config:       cfg,
		Logger:       logger,
		AnalysisRepo: memory.NewAnalysisRepository(),
		Loader:       app.NewLoaderFromConfig(cfg.Data, logger),
	}
	return c, nil
}

// InitWithDatabase connects to postgres, runs migrations and stores analyses there
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if c.Config.Database.URL == "" {
		c.Logger.Info("DATABASE_URL not set, keeping analyses in memory")
		return nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to connect to database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}

	c.DB = db
	c.AnalysisRepo = postgres.NewAnalysisRepository(db)
	c.Logger.Info("Analyses stored in postgres (schema %s)", migrator.Version())
	return nil
}

// InitAI builds the LLM client for the configured provider and the analyzer.
// Without an API key the analyzer serves the placeholder analysis.
func (c *Container) InitAI(ctx context.Context) error {
	llmConfig := llm.ConfigFromApp(c.Config.AI)
	client, err := llm.NewClient(ctx, llmConfig)
	if err != nil {
		return errors.Wrap(err, "failed to create LLM client")
	}
	if client == nil {
		c.Logger.Warn("No API key for LLM provider %q, AI analysis will show placeholder text", c.Config.AI.Provider)
	}

	c.LLMClient = client
	c.Analyzer = app.NewNegativeMarginAnalyzer(client, c.AnalysisRepo, app.AnalyzerConfig{
		Model:     llmConfig.Model,
		MaxTokens: c.Config.AI.MaxTokens,
		MaxRows:   c.Config.AI.MaxPromptRow,
	}, c.Logger)
	return nil
}

// Shutdown releases the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB == nil {
		return nil
	}
	if err := c.DB.Close(); err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to close database")
	}
	return nil
}
