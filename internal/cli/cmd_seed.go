package cli

import (
	"github.com/spf13/cobra"

	"github.com/obsplane/observer/internal/seed"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the hub with sample run records",
		Long: `Populate the hub with sample run records for trying out list, show,
and metrics. Records that already exist are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			res, err := seed.Apply(h)
			if err != nil {
				return err
			}
			cmd.Printf("Seeded: %d new, %d skipped\n", res.Written, res.Skipped)
			cmd.Printf("Total runs in hub: %d\n", res.Total)
			return nil
		},
	}
}
