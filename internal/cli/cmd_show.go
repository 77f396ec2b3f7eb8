package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obsplane/observer/internal/model"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			record, err := h.ReadRun(args[0])
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("run not found: %s", args[0])
			}
			data, err := model.MarshalRecord(*record)
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		},
	}
}
