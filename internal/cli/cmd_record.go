package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/model"
)

func newRecordCmd() *cobra.Command {
	var (
		inputType     string
		inputRef      string
		llmModel      string
		steps         string
		duration      float64
		failed        bool
		testsPassed   int
		testsFailed   int
		lintErrors    int
		typeErrors    int
		diffSize      int
		filesCreated  int
		filesModified int
		manual        bool
		manualReason  string
		notes         string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a pipeline run",
		Long: `Record a pipeline run in the Context Hub.
The run id and timestamp are generated; everything else comes from flags.
Records are immutable: a duplicate run id is refused, never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}

			var stepList []string
			for _, s := range strings.Split(steps, ",") {
				if s = strings.TrimSpace(s); s != "" {
					stepList = append(stepList, s)
				}
			}

			record := model.RunRecord{
				RunID:                    model.GenerateRunID(),
				Timestamp:                model.CurrentTimestamp(),
				InputType:                inputType,
				InputRef:                 inputRef,
				LLMModel:                 llmModel,
				PipelineStepsExecuted:    stepList,
				DurationMinutes:          duration,
				BuildSuccess:             !failed,
				TestsPassed:              testsPassed,
				TestsFailed:              testsFailed,
				LintErrors:               lintErrors,
				TypeErrors:               typeErrors,
				DiffSizeLines:            diffSize,
				FilesCreated:             filesCreated,
				FilesModified:            filesModified,
				ManualIntervention:       manual,
				ManualInterventionReason: manualReason,
				Notes:                    notes,
			}

			path, err := h.WriteRun(record)
			var verr *hub.ValidationError
			switch {
			case errors.As(err, &verr):
				cmd.PrintErrln("Validation errors:")
				for _, issue := range verr.Issues {
					cmd.PrintErrf("  - %s\n", issue)
				}
				return err
			case err != nil:
				return err
			}

			cmd.Printf("Run recorded: %s\n", record.RunID)
			cmd.Printf("  Stored at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputType, "type", "PRD", "Input type (PRD, FEATURE, BUGFIX, REFACTOR, HOTFIX, OTHER)")
	cmd.Flags().StringVar(&inputRef, "ref", "", "Input reference (filename or ticket)")
	cmd.Flags().StringVar(&llmModel, "model", "", "Primary LLM model used")
	cmd.Flags().StringVar(&steps, "steps", "", "Pipeline steps executed (comma-separated)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Duration in minutes")
	cmd.Flags().BoolVar(&failed, "failed", false, "Mark the build as failed")
	cmd.Flags().IntVar(&testsPassed, "tests-passed", 0, "Tests passed")
	cmd.Flags().IntVar(&testsFailed, "tests-failed", 0, "Tests failed")
	cmd.Flags().IntVar(&lintErrors, "lint-errors", 0, "Lint errors")
	cmd.Flags().IntVar(&typeErrors, "type-errors", 0, "Type errors")
	cmd.Flags().IntVar(&diffSize, "diff", 0, "Diff size in lines")
	cmd.Flags().IntVar(&filesCreated, "files-created", 0, "Files created")
	cmd.Flags().IntVar(&filesModified, "files-modified", 0, "Files modified")
	cmd.Flags().BoolVar(&manual, "manual", false, "Manual intervention was required")
	cmd.Flags().StringVar(&manualReason, "manual-reason", "", "Reason for manual intervention")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")

	return cmd
}
