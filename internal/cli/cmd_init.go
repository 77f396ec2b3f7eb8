package cli

import (
	"github.com/spf13/cobra"

	"github.com/obsplane/observer/internal/setup"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the Context Hub directory structure",
		Long: `Initialize the Context Hub directory structure, the starter parameter
config, and the watch configuration. Idempotent: existing files are
left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := setup.Run(hubPath())
			if err != nil {
				return err
			}
			h := res.Hub
			cmd.Printf("Context Hub initialized at: %s\n", h.BasePath)
			cmd.Printf("  runs/        -> %s\n", h.RunsDir)
			cmd.Printf("  metrics/     -> %s\n", h.MetricsDir)
			cmd.Printf("  analysis/    -> %s\n", h.AnalysisDir)
			cmd.Printf("  proposals/   -> %s\n", h.ProposalsDir)
			cmd.Printf("  parameters/  -> %s\n", h.ParametersDir)
			cmd.Printf("  verdicts/    -> %s\n", h.VerdictsDir)
			if res.WroteParameters {
				cmd.Println("  parameters/v0.1.0.json written")
			}
			if res.WroteWatchConfig {
				cmd.Println("  observer.yaml written")
			}
			cmd.Printf("\nTotal runs stored: %d\n", h.RunCount())
			return nil
		},
	}
}
