package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/obsplane/observer/internal/readiness"
)

func newReadinessCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Check graduation readiness for confidence-gated auto-apply",
		Long: `Check whether the hub has accumulated enough operational data to
safely move to confidence-gated auto-apply. Read-only: checks data,
prints a report, exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			report, err := readiness.NewChecker(h).Assess()
			if err != nil {
				return err
			}
			if jsonOutput {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(data))
				return nil
			}
			cmd.Print(readiness.RenderText(report))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Machine-readable output")
	return cmd
}
