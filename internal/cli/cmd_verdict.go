package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/obsplane/observer/internal/verdict"
)

func newVerdictCmd() *cobra.Command {
	var artifactID string
	var sidecarPath string

	cmd := &cobra.Command{
		Use:   "verdict",
		Short: "Generate a verdict from sidecar telemetry",
		Long: `Generate a verdict from sidecar telemetry and store it in the hub.
A missing or malformed sidecar produces a degraded pass verdict.
Always exits 0: observation must never break the pipeline it observes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Errors are reported but never propagated as a non-zero exit.
			if err := runVerdict(cmd, artifactID, sidecarPath); err != nil {
				cmd.PrintErrf("Error: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&artifactID, "artifact-id", "", "Run artifact id")
	cmd.Flags().StringVar(&sidecarPath, "sidecar-path", "", "Path to the .run.v1.json sidecar file")
	cmd.MarkFlagRequired("artifact-id")
	cmd.MarkFlagRequired("sidecar-path")
	return cmd
}

func runVerdict(cmd *cobra.Command, artifactID, sidecarPath string) error {
	h, err := openHub()
	if err != nil {
		return err
	}

	var sidecar verdict.Sidecar
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		cmd.PrintErrf("Warning: failed to read sidecar: %v\n", err)
	} else if err := json.Unmarshal(data, &sidecar); err != nil {
		cmd.PrintErrf("Warning: failed to parse sidecar: %v\n", err)
		sidecar = nil
	}

	engine := verdict.NewEngine(h)
	v := engine.Generate(artifactID, sidecar)
	path, err := engine.Write(v)
	if err != nil {
		return err
	}

	cmd.Printf("Verdict: %s (degraded=%v)\n", v.Verdict, v.Degraded)
	cmd.Printf("Written: %s\n", path)

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}
