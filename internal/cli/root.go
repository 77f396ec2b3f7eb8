// Package cli provides the Cobra-based command tree for observer.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/obsplane/observer/internal/hub"
)

// Version is stamped at build time via -ldflags.
var Version = "v0.3.0-dev"

// GlobalOpts holds global options parsed before subcommand dispatch.
type GlobalOpts struct {
	HubPath string
}

var globalOpts GlobalOpts

// NewRootCmd creates the root cobra command for observer.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "observer",
		Short: "Offline observation plane for automated pipeline runs",
		Long: `observer - offline observation plane for automated pipeline runs

Observer records immutable run records in a file-based Context Hub, computes
metrics and trends over them, generates deterministic verdicts from sidecar
telemetry, and turns analysis findings into parameter change proposals that
a human approves or rejects.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&globalOpts.HubPath, "hub", "",
		"Context Hub path (default $OBSERVER_HUB_PATH or ./context_hub)")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newInitCmd(),
		newRecordCmd(),
		newListCmd(),
		newShowCmd(),
		newExportCmd(),
		newMetricsCmd(),
		newAnalyzeCmd(),
		newVerdictCmd(),
		newProposalCmd(),
		newReadinessCmd(),
		newSeedCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command with the given output writers.
func Execute(stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

// hubPath resolves the hub location: flag, then environment, then the
// conventional local directory.
func hubPath() string {
	if globalOpts.HubPath != "" {
		return globalOpts.HubPath
	}
	if env := os.Getenv("OBSERVER_HUB_PATH"); env != "" {
		return env
	}
	return "context_hub"
}

func openHub() (*hub.Hub, error) {
	return hub.Open(hubPath())
}
