package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/obsplane/observer/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a drop directory and generate verdicts for sidecar files",
		Long: `Watch a drop directory for *.run.v1.json sidecar files and generate a
verdict for each artifact exactly once. A periodic rescan catches files
dropped while the watcher was down. Stop with SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			cfg, err := watch.LoadConfig(configPath, h.BasePath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(),
				syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return watch.NewWatcher(h, cfg).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "observer.yaml", "Watch configuration file")
	return cmd
}
