package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profitpulse/adapters/coercer"
	"profitpulse/adapters/source"
	"profitpulse/domain/project"
	"profitpulse/domain/table"
	"profitpulse/internal"
	"profitpulse/internal/config"
	"profitpulse/internal/errors"
)

const summaryCSV = "Metric , Value\nProjects,3\n"

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestPipeline(t *testing.T, summaryPath, projectsPath string, logs *bytes.Buffer) *Pipeline {
	t.Helper()
	logger := internal.NewLoggerTo(logs, internal.LogLevelDebug)
	c := coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	return NewPipeline(
		source.NewDataReader(summaryPath, c, logger),
		source.NewDataReader(projectsPath, c, logger),
		c,
		logger,
	)
}

func TestPipelineRoofRepairScenario(t *testing.T) {
	dir := t.TempDir()
	summary := writeFixture(t, dir, "Summary.csv", summaryCSV)
	projects := writeFixture(t, dir, "Projects.csv",
		"Topic,Region,Actual Margin %,Quoted Labor Hours,Actual Labor Hours\n"+
			"Roof Repair,West,-5%,40,55\n")

	var logs bytes.Buffer
	result := newTestPipeline(t, summary, projects, &logs).Load(context.Background())
	require.True(t, result.OK(), logs.String())

	p := result.Projects
	require.Equal(t, 1, p.NumRows())

	margin, ok := p.Float(project.ColActualMargin, 0)
	require.True(t, ok)
	assert.InDelta(t, -0.05, margin, 1e-12)

	negative, ok := p.Value(project.ColIsNegativeMargin, 0).Bool()
	require.True(t, ok)
	assert.True(t, negative)

	variance, ok := p.Float(project.ColLaborHoursVariance, 0)
	require.True(t, ok)
	assert.Equal(t, 15.0, variance)

	pct, ok := p.Float(project.ColLaborHoursVariancePct, 0)
	require.True(t, ok)
	assert.InDelta(t, 0.375, pct, 1e-12)

	// no Estimated Margin % column: nothing is subtracted
	diff, ok := p.Float(project.ColMarginDifference, 0)
	require.True(t, ok)
	assert.InDelta(t, -0.05, diff, 1e-12)

	assert.Equal(t, "Roof Repair", p.Value(project.ColTopic, 0).String())
	assert.Equal(t, table.RolePercentage, p.Roles()[project.ColActualMargin])
	assert.Equal(t, table.RoleDerived, p.Roles()[project.ColIsNegativeMargin])
	assert.Equal(t, []string{"Metric", "Value"}, result.Summary.Names())
}

func TestPipelineMissingProjectsFileDegrades(t *testing.T) {
	dir := t.TempDir()
	summary := writeFixture(t, dir, "Summary.csv", summaryCSV)

	var logs bytes.Buffer
	result := newTestPipeline(t, summary, filepath.Join(dir, "Projects.csv"), &logs).Load(context.Background())

	require.False(t, result.OK())
	assert.Equal(t, 0, result.Summary.NumRows())
	assert.Equal(t, 0, result.Summary.NumCols())
	assert.Equal(t, 0, result.Projects.NumRows())
	assert.Equal(t, 0, result.Projects.NumCols())
	assert.Equal(t, errors.CodeSourceReadFailure, errors.GetCode(result.Err))
	assert.Contains(t, logs.String(), "Error loading or processing data:")
}

func TestPipelineCleansEveryRole(t *testing.T) {
	dir := t.TempDir()
	summary := writeFixture(t, dir, "Summary.csv", summaryCSV)
	projects := writeFixture(t, dir, "Projects.csv",
		"Topic,Total Costs $,Estimated Margin %,Actual Margin %,Projected End Date,Cost Date,Owner\n"+
			"A,\"$1,234.50\",10%,12.5%,2025-02-14,3/1/2025,Kim\n"+
			"B,(500.00),,0%,soon,,Lee\n"+
			"C,junk,5%,n/a,03/31/2025,,\n")

	var logs bytes.Buffer
	result := newTestPipeline(t, summary, projects, &logs).Load(context.Background())
	require.True(t, result.OK(), logs.String())
	p := result.Projects

	cost, ok := p.Float(project.ColTotalCosts, 0)
	require.True(t, ok)
	assert.Equal(t, 1234.50, cost)
	assert.True(t, p.Value(project.ColTotalCosts, 1).Missing(), "parentheses stay unparsed by default")
	assert.True(t, p.Value(project.ColTotalCosts, 2).Missing())

	actual, _ := p.Float(project.ColActualMargin, 0)
	assert.InDelta(t, 0.125, actual, 1e-12)
	zero, ok := p.Float(project.ColActualMargin, 1)
	require.True(t, ok)
	assert.Equal(t, 0.0, zero)
	assert.True(t, p.Value(project.ColActualMargin, 2).Missing())

	end, ok := p.Value(project.ColProjectedEndDate, 0).Time()
	require.True(t, ok)
	assert.True(t, end.Equal(time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Value(project.ColProjectedEndDate, 1).Missing())

	roles := p.Roles()
	assert.Equal(t, table.RoleMonetary, roles["Cost Date"], "monetary wins over date")
	assert.True(t, p.Value("Cost Date", 0).Missing(), "a date in a monetary column does not parse")
	assert.Equal(t, table.RoleText, roles[project.ColOwner])

	diff, _ := p.Float(project.ColMarginDifference, 0)
	assert.InDelta(t, 0.025, diff, 1e-12)
	assert.True(t, p.Value(project.ColMarginDifference, 1).Missing(), "missing estimate propagates")

	for row := 0; row < p.NumRows(); row++ {
		negative, ok := p.Value(project.ColIsNegativeMargin, row).Bool()
		require.True(t, ok)
		assert.False(t, negative)
	}
	assert.False(t, p.Has(project.ColLaborHoursVariance), "labor fields need both hour columns")
}

func TestPipelineZeroQuotedHoursIsMissing(t *testing.T) {
	dir := t.TempDir()
	summary := writeFixture(t, dir, "Summary.csv", summaryCSV)
	projects := writeFixture(t, dir, "Projects.csv",
		"Topic,Quoted Labor Hours,Actual Labor Hours\nA,0,10\nB,,4\nC,8,6\n")

	result := newTestPipeline(t, summary, projects, &bytes.Buffer{}).Load(context.Background())
	require.True(t, result.OK())
	p := result.Projects

	variance, ok := p.Float(project.ColLaborHoursVariance, 0)
	require.True(t, ok)
	assert.Equal(t, 10.0, variance)
	assert.True(t, p.Value(project.ColLaborHoursVariancePct, 0).Missing())
	assert.True(t, p.Value(project.ColLaborHoursVariance, 1).Missing())
	assert.True(t, p.Value(project.ColLaborHoursVariancePct, 1).Missing())

	pct, _ := p.Float(project.ColLaborHoursVariancePct, 2)
	assert.InDelta(t, -0.25, pct, 1e-12)

	// no Actual Margin % column
	for row := 0; row < p.NumRows(); row++ {
		diff, ok := p.Float(project.ColMarginDifference, row)
		require.True(t, ok)
		assert.Equal(t, 0.0, diff)
	}
	negative, _ := p.Value(project.ColIsNegativeMargin, 0).Bool()
	assert.False(t, negative)
}

func TestPipelineIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	summary := writeFixture(t, dir, "Summary.csv", summaryCSV)
	projects := writeFixture(t, dir, "Projects.csv",
		"Topic,Actual Margin %,Projected End Date,Total Costs $\nA,-5%,2025-01-10,$10\nB,7%,2025-02-01,$20\n")

	pipeline := newTestPipeline(t, summary, projects, &bytes.Buffer{})
	first := pipeline.Load(context.Background())
	second := pipeline.Load(context.Background())

	require.True(t, first.OK())
	assert.Equal(t, first.Projects.Fingerprint(), second.Projects.Fingerprint())
	assert.Equal(t, first.Summary.Fingerprint(), second.Summary.Fingerprint())
}

func TestPipelineRecoversFromPanics(t *testing.T) {
	dir := t.TempDir()
	summary := writeFixture(t, dir, "Summary.csv", summaryCSV)
	projects := writeFixture(t, dir, "Projects.csv", "Topic,Total Costs $\nA,$1\n")

	var logs bytes.Buffer
	pipeline := newTestPipeline(t, summary, projects, &logs).WithRules([]ClassificationRule{
		{Role: table.RoleMonetary, Match: func(string) bool { panic("bad rule") }},
	})

	result := pipeline.Load(context.Background())
	require.False(t, result.OK())
	assert.Equal(t, errors.CodePipelineFailure, errors.GetCode(result.Err))
	assert.Equal(t, 0, result.Projects.NumCols())
	assert.Contains(t, logs.String(), "bad rule")
}

type panickingSource struct{}

func (panickingSource) Path() string { return "Projects.xlsx" }

func (panickingSource) ReadTable(ctx context.Context) (*table.Table, error) {
	var cells map[string]int
	cells["A1"] = 1
	return nil, nil
}

func TestPipelineRecoversFromReaderPanics(t *testing.T) {
	dir := t.TempDir()
	summary := writeFixture(t, dir, "Summary.csv", summaryCSV)

	var logs bytes.Buffer
	logger := internal.NewLoggerTo(&logs, internal.LogLevelDebug)
	c := coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	pipeline := NewPipeline(source.NewDataReader(summary, c, logger), panickingSource{}, c, logger)

	result := pipeline.Load(context.Background())
	require.False(t, result.OK())
	assert.Equal(t, errors.CodeSourceReadFailure, errors.GetCode(result.Err))
	assert.Equal(t, 0, result.Summary.NumRows())
	assert.Equal(t, 0, result.Projects.NumCols())
	assert.Contains(t, logs.String(), "Error loading or processing data")
	assert.Contains(t, logs.String(), "nil map")
}

func TestNewPipelineFromConfigHonorsParentheses(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DataConfig{
		SummaryFile:           writeFixture(t, dir, "Summary.csv", summaryCSV),
		ProjectsFile:          writeFixture(t, dir, "Projects.csv", "Topic,Total Costs $\nA,($500.00)\n"),
		ParenNegativeCurrency: true,
	}

	result := NewPipelineFromConfig(cfg, internal.NewLoggerTo(&bytes.Buffer{}, internal.LogLevelError)).Load(context.Background())
	require.True(t, result.OK())
	cost, ok := result.Projects.Float(project.ColTotalCosts, 0)
	require.True(t, ok)
	assert.Equal(t, -500.0, cost)
}

func TestClassifyColumns(t *testing.T) {
	roles := ClassifyColumns([]string{
		"Calculated Total Install Price $",
		"Actual Margin %",
		"Revenue Notes",
		"Projected End Date",
		"Cost Date",
		"Region",
		"margin lowercase",
	}, DefaultRules())

	assert.Equal(t, map[string]table.Role{
		"Calculated Total Install Price $": table.RoleMonetary,
		"Actual Margin %":                  table.RolePercentage,
		"Revenue Notes":                    table.RoleMonetary,
		"Projected End Date":               table.RoleDate,
		"Cost Date":                        table.RoleMonetary,
		"Region":                           table.RoleText,
		"margin lowercase":                 table.RoleText,
	}, roles)
}
