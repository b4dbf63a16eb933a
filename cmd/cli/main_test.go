package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeSources(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	summary := filepath.Join(dir, "Summary.csv")
	projects := filepath.Join(dir, "Projects.csv")
	require.NoError(t, os.WriteFile(summary, []byte("Metric,Value\nProjects,2\n"), 0o644))
	require.NoError(t, os.WriteFile(projects, []byte(
		"Topic,Region,Actual Margin %,Total Costs $,Projected End Date\n"+
			"Roof Repair,West,-5%,\"$1,200\",2025-02-01\n"+
			"Boiler,East,12%,$800,2025-03-01\n"), 0o644))
	return summary, projects
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LLM_PROVIDER", "gemini")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLoadPrintsRoles(t *testing.T) {
	summary, projects := writeSources(t)

	out, _, err := run(t, "load", "--summary", summary, "--projects", projects, "--log-level", "ERROR")
	require.NoError(t, err)

	assert.Contains(t, out, "projects: 2 rows")
	assert.Regexp(t, `Actual Margin %\s+percentage`, out)
	assert.Regexp(t, `Total Costs \$\s+monetary`, out)
	assert.Regexp(t, `Projected End Date\s+date`, out)
	assert.Regexp(t, `Is_Negative_Margin\s+derived`, out)
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	summary, _ := writeSources(t)

	_, _, err := run(t, "load", "--summary", summary, "--projects", "/does/not/exist.csv", "--log-level", "ERROR")
	assert.Error(t, err)
}

func TestAnalyzeWithoutKeyPrintsPlaceholder(t *testing.T) {
	summary, projects := writeSources(t)

	out, errOut, err := run(t, "analyze", "--summary", summary, "--projects", projects, "--log-level", "ERROR")
	require.NoError(t, err)
	assert.Contains(t, out, "No API key found for Gemini")
	assert.Contains(t, errOut, "provider=placeholder")
}

func TestExportCSVToStdout(t *testing.T) {
	summary, projects := writeSources(t)

	out, _, err := run(t, "export", "--summary", summary, "--projects", projects, "--log-level", "ERROR")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Margin_Difference")
	assert.Contains(t, lines[1], "1200")
}

func TestExportXLSX(t *testing.T) {
	summary, projects := writeSources(t)
	outPath := filepath.Join(t.TempDir(), "projects.xlsx")

	_, _, err := run(t, "export", "--format", "xlsx", "--out", outPath,
		"--summary", summary, "--projects", projects, "--log-level", "ERROR")
	require.NoError(t, err)

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Topic", rows[0][0])
	assert.Equal(t, "Roof Repair", rows[1][0])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	_, _, err := run(t, "export", "--format", "pdf")
	assert.ErrorContains(t, err, "unsupported format")

	_, _, err = run(t, "export", "--format", "xlsx")
	assert.ErrorContains(t, err, "--out is required")
}

func TestMigrateRequiresDatabase(t *testing.T) {
	_, _, err := run(t, "migrate")
	assert.ErrorContains(t, err, "DATABASE_URL is required")
}
