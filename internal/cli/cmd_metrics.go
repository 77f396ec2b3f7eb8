package cli

import (
	"github.com/spf13/cobra"

	"github.com/obsplane/observer/internal/metrics"
)

func newMetricsCmd() *cobra.Command {
	var last int
	var snapshot bool

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show aggregated metrics over recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			runs, err := h.ListRuns(last, true)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				cmd.Println("No runs recorded yet.")
				return nil
			}

			summary := metrics.Compute(runs)

			cmd.Println("=== Observer Plane - Metrics Summary ===")
			cmd.Printf("Runs analyzed: %d\n", summary.RunCount)
			if summary.DateRangeStart != "" {
				cmd.Printf("Date range:    %s -> %s\n",
					clip(summary.DateRangeStart, 10), clip(summary.DateRangeEnd, 10))
			}
			cmd.Println()

			cmd.Println("Duration")
			cmd.Printf("  Mean:    %.1f min\n", summary.DurationMean)
			cmd.Printf("  Median:  %.1f min\n", summary.DurationMedian)
			cmd.Printf("  Range:   %.1f - %.1f min\n", summary.DurationMin, summary.DurationMax)
			if summary.DurationStddev > 0 {
				cmd.Printf("  Stddev:  %.1f min\n", summary.DurationStddev)
			}
			cmd.Println()

			cmd.Println("Reliability")
			cmd.Printf("  Build success rate:      %.1f%%\n", summary.BuildSuccessRate*100)
			cmd.Printf("  Test pass rate:          %.1f%%\n", summary.TestPassRate*100)
			cmd.Printf("  Manual intervention:     %.1f%%\n", summary.ManualInterventionRate*100)
			cmd.Println()

			cmd.Println("Code Hygiene")
			cmd.Printf("  Avg lint errors/run:     %.1f\n", summary.AvgLintErrors)
			cmd.Printf("  Avg type errors/run:     %.1f\n", summary.AvgTypeErrors)
			cmd.Println()

			cmd.Println("Scale")
			cmd.Printf("  Avg diff size:           %.0f lines\n", summary.AvgDiffSize)
			cmd.Printf("  Total diff lines:        %d\n", summary.TotalDiffLines)
			cmd.Println()

			cmd.Println("Target Comparison (v1)")
			targetCheck(cmd, "Median cycle time", summary.DurationMedian, 30, "<=", "min")
			targetCheck(cmd, "Manual intervention", summary.ManualInterventionRate*100, 10, "<=", "%")
			targetCheck(cmd, "Build success", summary.BuildSuccessRate*100, 90, ">=", "%")

			if snapshot {
				path, err := metrics.WriteSnapshot(h, summary)
				if err != nil {
					return err
				}
				cmd.Printf("\nSnapshot written: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&last, "last", 0, "Analyze only the last N runs")
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "Persist this summary under metrics/")
	return cmd
}

func targetCheck(cmd *cobra.Command, label string, actual, target float64, op, unit string) {
	met := false
	switch op {
	case "<=":
		met = actual <= target
	case ">=":
		met = actual >= target
	}
	status := "FAIL"
	if met {
		status = "PASS"
	}
	cmd.Printf("  [%s] %s: %.1f%s (target: %s%g%s)\n", status, label, actual, unit, op, target, unit)
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
