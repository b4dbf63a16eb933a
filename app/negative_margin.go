package app

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"profitpulse/adapters/source"
	"profitpulse/domain/core"
	"profitpulse/domain/project"
	"profitpulse/domain/table"
	"profitpulse/internal"
	"profitpulse/models"
	"profitpulse/ports"
)

// DefaultMaxPromptRows caps how many negative-margin projects go into the prompt
const DefaultMaxPromptRows = 15

// ProviderPlaceholder marks analyses that used the built-in fallback text
const ProviderPlaceholder = "placeholder"

const placeholderAnalysis = `In the meantime, here is a placeholder analysis:

## Common Issues in Negative Margin Projects

* Labor hours significantly exceeding estimates
* Parts costs variance higher than expected
* Scope creep without proper change orders
* Insufficient pricing for complex takeover projects
* Geographic variations in labor efficiency

## Recommendations

* Improve labor estimation process for takeover projects
* Implement better scope definition and change management
* Develop region-specific pricing models
* Establish clearer performance metrics for project managers
`

const promptTemplate = `I'm analyzing financial data for projects with negative margins.
Here's the data for some representative negative margin projects:

%s
Based on this data, please provide:
1. 5-6 bullet points identifying common issues or patterns in these negative margin projects
2. 3-4 actionable recommendations for improving profitability on future projects
3. A brief analysis of the relationship between quoted vs. actual labor hours in these projects

Format your response as markdown with clear sections.
Focus on practical, data-driven insights that can help improve project performance.
`

// AnalyzerConfig holds the LLM settings used by NegativeMarginAnalyzer
type AnalyzerConfig struct {
	Model     string
	MaxTokens int
	MaxRows   int
}

// NegativeMarginAnalyzer asks an LLM to explain the negative-margin projects
type NegativeMarginAnalyzer struct {
	client ports.LLMClient
	repo   ports.AnalysisRepository
	config AnalyzerConfig
	logger *internal.Logger
	now    func() time.Time
}

// NewNegativeMarginAnalyzer creates an analyzer. A nil client always produces
// the placeholder analysis; a nil repo skips persistence.
func NewNegativeMarginAnalyzer(client ports.LLMClient, repo ports.AnalysisRepository, config AnalyzerConfig, logger *internal.Logger) *NegativeMarginAnalyzer {
	if config.MaxRows <= 0 {
		config.MaxRows = DefaultMaxPromptRows
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &NegativeMarginAnalyzer{
		client: client,
		repo:   repo,
		config: config,
		logger: logger.With("NegativeMarginAnalyzer"),
		now:    time.Now,
	}
}

// Analyze builds the prompt from projects and returns the rendered analysis.
// LLM failures fall back to the placeholder text; only a cancelled context is an error.
func (a *NegativeMarginAnalyzer) Analyze(ctx context.Context, projects *table.Table) (*models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slice := a.PromptData(projects)
	prompt, err := BuildPrompt(slice)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	analysis := &models.Analysis{
		ID:        core.NewAnalysisID(),
		Model:     a.config.Model,
		RowCount:  slice.NumRows(),
		Prompt:    prompt,
		CreatedAt: a.now().UTC(),
	}

	if a.client == nil {
		analysis.Provider = ProviderPlaceholder
		analysis.Markdown = "**No API key found for Gemini. Please add a GEMINI_API_KEY to your environment variables.**\n\n" + placeholderAnalysis
		analysis.Fallback = true
	} else {
		analysis.Provider = a.client.Provider()
		resp, err := a.client.ChatCompletionWithUsage(ctx, a.config.Model, prompt, a.config.MaxTokens)
		if err != nil {
			a.logger.Warn("LLM call failed, using placeholder analysis: %v", err)
			analysis.Markdown = fmt.Sprintf("**Error using Gemini API: %v**\n\n", err) + placeholderAnalysis
			analysis.Fallback = true
		} else {
			analysis.Markdown = resp.Content
			if resp.Usage != nil {
				analysis.PromptTokens = resp.Usage.PromptTokens
				analysis.CompletionTokens = resp.Usage.CompletionTokens
				if resp.Usage.Model != "" {
					analysis.Model = resp.Usage.Model
				}
			}
		}
	}
	analysis.HTML = RenderMarkdown(analysis.Markdown)

	if a.repo != nil {
		if err := a.repo.Save(ctx, analysis); err != nil {
			a.logger.Error("failed to save analysis %s: %v", analysis.ID, err)
		}
	}

	a.logger.Info("analysis %s: %d rows, provider=%s, fallback=%t",
		analysis.ID, analysis.RowCount, analysis.Provider, analysis.Fallback)
	return analysis, nil
}

// PromptData selects the negative-margin rows and allowlisted columns sent to the LLM
func (a *NegativeMarginAnalyzer) PromptData(projects *table.Table) *table.Table {
	if projects == nil || !projects.Has(project.ColActualMargin) {
		return table.Empty()
	}

	negative := projects.Filter(func(row int) bool {
		margin, ok := projects.Float(project.ColActualMargin, row)
		return ok && margin < 0
	})

	columns := make([]string, 0, len(project.AnalysisColumns)+1)
	for _, name := range project.AnalysisColumns {
		if negative.Has(name) {
			columns = append(columns, name)
		}
	}
	for _, name := range negative.Names() {
		if strings.Contains(name, "Notes") || strings.Contains(name, "Performance") {
			columns = append(columns, name)
			break
		}
	}

	return negative.Select(columns...).Head(a.config.MaxRows)
}

// BuildPrompt embeds the CSV form of data in the fixed analysis prompt
func BuildPrompt(data *table.Table) (string, error) {
	var buf bytes.Buffer
	if err := source.WriteCSV(data, &buf); err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, buf.String()), nil
}

// RenderMarkdown converts analysis markdown to HTML. Raw HTML in the input is dropped.
func RenderMarkdown(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}
