package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export all runs as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			runs, err := h.ListRuns(0, true)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(runs, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		},
	}
}
