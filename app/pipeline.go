package app

import (
	"context"
	"fmt"
	"time"

	"profitpulse/adapters/coercer"
	"profitpulse/domain/table"
	"profitpulse/internal"
	"profitpulse/internal/errors"
	"profitpulse/ports"

	"golang.org/x/sync/errgroup"
)

// Pipeline loads the summary and projects exports, cleans the projects
// columns by role and appends the derived margin and labor fields.
type Pipeline struct {
	summary  ports.TableSource
	projects ports.TableSource
	coercer  *coercer.TypeCoercer
	rules    []ClassificationRule
	logger   *internal.Logger
}

// NewPipeline creates a pipeline over two sources using the default rules
func NewPipeline(summary, projects ports.TableSource, c *coercer.TypeCoercer, logger *internal.Logger) *Pipeline {
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pipeline{
		summary:  summary,
		projects: projects,
		coercer:  c,
		rules:    DefaultRules(),
		logger:   logger.With("Pipeline"),
	}
}

// WithRules replaces the classification rules
func (p *Pipeline) WithRules(rules []ClassificationRule) *Pipeline {
	p.rules = rules
	return p
}

// Load runs the whole pipeline. It never returns an error: any failure is
// logged and yields two empty tables with the cause in LoadResult.Err.
func (p *Pipeline) Load(ctx context.Context) (result table.LoadResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = p.degrade(errors.PipelineFailure("panic while processing data", fmt.Errorf("%v", r)))
		}
	}()

	summary, projects, err := p.readSources(ctx)
	if err != nil {
		return p.degrade(err)
	}

	roles := ClassifyColumns(projects.Names(), p.rules)
	p.normalize(projects, roles)
	deriveFields(projects)

	p.logger.Debug("loaded summary (%d rows) and projects (%d rows, %d columns) in %s",
		summary.NumRows(), projects.NumRows(), projects.NumCols(), time.Since(start))
	return table.Loaded(summary, projects)
}

// readSources reads both exports concurrently; either failure fails the pair
func (p *Pipeline) readSources(ctx context.Context) (*table.Table, *table.Table, error) {
	var summary, projects *table.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = readSource(gctx, p.summary)
		return err
	})
	g.Go(func() (err error) {
		projects, err = readSource(gctx, p.projects)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return summary, projects, nil
}

// readSource runs on an errgroup goroutine, so it recovers its own panics
func readSource(ctx context.Context, src ports.TableSource) (t *table.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, errors.SourceReadFailure(src.Path(), fmt.Errorf("panic: %v", r))
		}
	}()

	t, err = src.ReadTable(ctx)
	if err != nil {
		return nil, errors.SourceReadFailure(src.Path(), err)
	}
	return t, nil
}

// normalize assigns roles and cleans textual monetary, percentage and date columns.
// Columns the reader already inferred as numeric keep their values.
func (p *Pipeline) normalize(projects *table.Table, roles map[string]table.Role) {
	for _, col := range projects.Columns() {
		role := roles[col.Name]
		if role == table.RoleText {
			continue
		}
		if !col.IsTextual() {
			projects.SetRole(col.Name, role)
			continue
		}

		cleaned := make([]table.Value, len(col.Cells))
		for i, cell := range col.Cells {
			text, ok := cell.Text()
			if !ok {
				cleaned[i] = cell
				continue
			}
			cleaned[i] = p.coercer.Coerce(role, text)
		}
		projects.SetColumn(col.Name, role, cleaned)
	}
}

func (p *Pipeline) degrade(err error) table.LoadResult {
	p.logger.Error("Error loading or processing data: %v", err)
	return table.Degraded(err)
}
