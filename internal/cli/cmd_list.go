package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			runs, err := h.ListRuns(limit, true)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				cmd.Println("No runs recorded yet.")
				return nil
			}

			cmd.Printf("%-28s %-10s %-8s %-9s %-12s %-6s %s\n",
				"RUN ID", "TYPE", "TIME", "SUCCESS", "TESTS", "LINT", "MANUAL")
			cmd.Println(strings.Repeat("-", 95))

			for _, r := range runs {
				tests := fmt.Sprintf("%dp %df", r.TestsPassed, r.TestsFailed)
				success := "Y"
				if !r.BuildSuccess {
					success = "N"
				}
				manual := "-"
				if r.ManualIntervention {
					manual = "yes"
				}
				duration := "-"
				if r.DurationMinutes > 0 {
					duration = fmt.Sprintf("%.0fm", r.DurationMinutes)
				}
				cmd.Printf("%-28s %-10s %-8s %-9s %-12s %-6d %s\n",
					r.RunID, r.InputType, duration, success, tests, r.LintErrors, manual)
			}

			cmd.Printf("\nShowing %d of %d total runs\n", len(runs), h.RunCount())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum runs to list")
	return cmd
}
