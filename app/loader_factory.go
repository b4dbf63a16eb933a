package app

import (
	"profitpulse/adapters/coercer"
	"profitpulse/adapters/source"
	"profitpulse/internal"
	"profitpulse/internal/config"
	"profitpulse/ports"
)

// NewPipelineFromConfig builds a pipeline over the configured source files
func NewPipelineFromConfig(cfg config.DataConfig, logger *internal.Logger) *Pipeline {
	coercionConfig := coercer.DefaultCoercionConfig()
	coercionConfig.ParenthesesNegative = cfg.ParenNegativeCurrency
	c := coercer.NewTypeCoercer(coercionConfig)

	return NewPipeline(
		source.NewDataReader(cfg.SummaryFile, c, logger),
		source.NewDataReader(cfg.ProjectsFile, c, logger),
		c,
		logger,
	)
}

// NewLoaderFromConfig returns the pipeline, wrapped in a CachedLoader when caching is on
func NewLoaderFromConfig(cfg config.DataConfig, logger *internal.Logger) ports.TableLoader {
	pipeline := NewPipelineFromConfig(cfg, logger)
	if !cfg.CacheTables {
		return pipeline
	}
	return NewCachedLoader(pipeline, []string{cfg.SummaryFile, cfg.ProjectsFile}, logger)
}
