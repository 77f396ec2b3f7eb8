package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/obsplane/observer/internal/analysis"
)

func newAnalyzeCmd() *cobra.Command {
	var window int
	var printReport bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the analysis agent and generate a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			if h.RunCount() == 0 {
				cmd.Println("No runs recorded yet. Nothing to analyze.")
				return nil
			}

			params, err := h.LatestParameters()
			if err != nil {
				return err
			}
			cfg := analysis.ConfigFromParameters(params)
			if window > 0 {
				cfg.AnalysisWindowSize = window
			}

			agent := analysis.NewAgent(h, cfg)
			cmd.Printf("Running analysis agent (window=%d)...\n", cfg.AnalysisWindowSize)

			result := agent.Run()
			if !result.Success {
				return fmt.Errorf("analysis failed: %s", result.Err)
			}

			cmd.Printf("\nAnalysis complete in %.2fs\n", result.DurationSeconds)
			cmd.Printf("  Runs analyzed: %d\n", result.RunsAnalyzed)
			cmd.Printf("  Findings:      %d\n", result.FindingsCount)
			cmd.Printf("  Report:        %s\n", result.ReportFilename)

			if printReport {
				cmd.Printf("\n%s\n", strings.Repeat("=", 60))
				cmd.Println(result.ReportContent)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&window, "window", 0, "Override analysis window size")
	cmd.Flags().BoolVar(&printReport, "print", false, "Print the report to stdout")
	return cmd
}
