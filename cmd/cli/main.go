package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"profitpulse/adapters/source"
	"profitpulse/internal/config"
	"profitpulse/internal/container"
	"profitpulse/internal/migration"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	summary  string
	projects string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "profitpulse-cli",
		Short:         "Load, analyze and export the project profitability exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.summary, "summary", "", "Summary export (overrides SUMMARY_FILE)")
	rootCmd.PersistentFlags().StringVar(&opts.projects, "projects", "", "Projects export (overrides PROJECTS_FILE)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "ERROR|WARN|INFO|DEBUG|TRACE (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		newLoadCmd(opts),
		newAnalyzeCmd(opts),
		newExportCmd(opts),
		newMigrateCmd(opts),
	)
	return rootCmd
}

// bootstrap loads configuration, applies flag overrides and builds the container
func bootstrap(opts *rootOptions) (*container.Container, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.summary != "" {
		cfg.Data.SummaryFile = opts.summary
	}
	if opts.projects != "" {
		cfg.Data.ProjectsFile = opts.projects
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return container.New(cfg)
}

func newLoadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Run the ingestion pipeline and print column roles and row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(opts)
			if err != nil {
				return err
			}

			result := c.Loader.Load(cmd.Context())
			if !result.OK() {
				return fmt.Errorf("load failed: %w", result.Err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "summary:  %d rows, %d columns\n", result.Summary.NumRows(), result.Summary.NumCols())
			fmt.Fprintf(out, "projects: %d rows, %d columns\n\n", result.Projects.NumRows(), result.Projects.NumCols())

			roles := result.Projects.Roles()
			names := make([]string, 0, len(roles))
			for name := range roles {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "  %-40s %s\n", name, roles[name])
			}
			return nil
		},
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var showPrompt bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the negative-margin AI analysis and print the markdown",
		Long: `Run the negative-margin AI analysis over all projects.

The provider is selected with LLM_PROVIDER=gemini|openai|mock (default: gemini).
Without GEMINI_API_KEY or OPENAI_API_KEY the placeholder analysis is printed.
When DATABASE_URL is set the analysis is stored in postgres.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer c.Shutdown(ctx)

			if err := c.InitWithDatabase(ctx); err != nil {
				return err
			}
			if err := c.InitAI(ctx); err != nil {
				return err
			}

			result := c.Loader.Load(ctx)
			if !result.OK() {
				return fmt.Errorf("load failed: %w", result.Err)
			}

			analysis, err := c.Analyzer.Analyze(ctx, result.Projects)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showPrompt {
				fmt.Fprintln(out, analysis.Prompt)
				fmt.Fprintln(out, strings.Repeat("-", 60))
			}
			fmt.Fprintln(out, analysis.Markdown)
			fmt.Fprintf(cmd.ErrOrStderr(), "\nanalysis %s: provider=%s rows=%d tokens=%d\n",
				analysis.ID, analysis.Provider, analysis.RowCount, analysis.TotalTokens())
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPrompt, "show-prompt", false, "Print the prompt sent to the model")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the normalized projects table as CSV or xlsx",
		Long: `Write the normalized projects table, including derived fields.

Example: profitpulse-cli export --format xlsx --out projects.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("unsupported format %q (use csv or xlsx)", format)
			}
			if format == "xlsx" && outPath == "" {
				return fmt.Errorf("--out is required for xlsx exports")
			}

			c, err := bootstrap(opts)
			if err != nil {
				return err
			}
			result := c.Loader.Load(cmd.Context())
			if !result.OK() {
				return fmt.Errorf("load failed: %w", result.Err)
			}

			if format == "xlsx" {
				if err := source.WriteXLSX(result.Projects, outPath); err != nil {
					return fmt.Errorf("write %s: %w", outPath, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", result.Projects.NumRows(), outPath)
				return nil
			}

			if outPath == "" {
				return source.WriteCSV(result.Projects, cmd.OutOrStdout())
			}
			f, err := os.Create(filepath.Clean(outPath))
			if err != nil {
				return err
			}
			defer f.Close()
			if err := source.WriteCSV(result.Projects, f); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", result.Projects.NumRows(), outPath)
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv|xlsx")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file (csv defaults to stdout)")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var drop bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the analyses schema in DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap(opts)
			if err != nil {
				return err
			}
			if c.Config.Database.URL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			ctx := cmd.Context()
			defer c.Shutdown(ctx)

			if err := c.InitWithDatabase(ctx); err != nil {
				return err
			}
			if drop {
				if err := migration.NewRunner().Drop(ctx, c.DB); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "dropped analyses schema")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "analyses schema at version %s\n", migration.NewRunner().Version())
			return nil
		},
	}

	cmd.Flags().BoolVar(&drop, "drop", false, "Drop the analyses table instead")
	return cmd
}
