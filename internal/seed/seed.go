// Package seed populates an empty hub with sample run records so the list,
// show, and metrics commands have data to work with immediately.
package seed

import (
	"errors"
	"log"

	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/model"
)

// Result reports what Apply did.
type Result struct {
	Written int
	Skipped int
	Total   int
}

// Records returns the sample runs. Run ids contain "seed" so downstream
// consumers can exclude them from operational counts.
func Records() []model.RunRecord {
	return []model.RunRecord{
		{
			RunID:                 "2026-02-04-seed01",
			Timestamp:             "2026-02-04T09:00:00+00:00",
			InputType:             "PRD",
			InputRef:              "auth-service-prd.md",
			LLMModel:              "claude-4.6",
			PipelineStepsExecuted: []string{"ingest", "build", "audit", "ship"},
			DurationMinutes:       28,
			BuildSuccess:          true,
			TestsPassed:           38,
			TestsFailed:           2,
			LintErrors:            3,
			DiffSizeLines:         340,
			FilesCreated:          8,
			FilesModified:         2,
			Notes:                 "First auth service build. Clean run.",
		},
		{
			RunID:                    "2026-02-04-seed02",
			Timestamp:                "2026-02-04T14:30:00+00:00",
			InputType:                "FEATURE",
			InputRef:                 "add-mfa-support",
			LLMModel:                 "claude-4.6",
			PipelineStepsExecuted:    []string{"ingest", "build", "audit", "debug", "ship"},
			DurationMinutes:          45,
			BuildSuccess:             true,
			TestsPassed:              52,
			LintErrors:               1,
			DiffSizeLines:            580,
			FilesCreated:             4,
			FilesModified:            6,
			ManualIntervention:       true,
			ManualInterventionReason: "PRD ambiguity on TOTP vs SMS fallback",
			Notes:                    "Required debug cycle. PRD clarity issue.",
		},
		{
			RunID:                 "2026-02-05-seed03",
			Timestamp:             "2026-02-05T10:15:00+00:00",
			InputType:             "PRD",
			InputRef:              "payment-gateway-prd.md",
			LLMModel:              "claude-4.6",
			PipelineStepsExecuted: []string{"ingest", "build", "audit", "ship"},
			DurationMinutes:       33,
			BuildSuccess:          true,
			TestsPassed:           47,
			DiffSizeLines:         420,
			FilesCreated:          6,
			FilesModified:         1,
			Notes:                 "Clean build. Good PRD structure.",
		},
		{
			RunID:                 "2026-02-05-seed04",
			Timestamp:             "2026-02-05T16:00:00+00:00",
			InputType:             "BUGFIX",
			InputRef:              "fix-session-timeout-bug",
			LLMModel:              "claude-4.6",
			PipelineStepsExecuted: []string{"ingest", "build", "debug", "ship"},
			DurationMinutes:       18,
			BuildSuccess:          true,
			TestsPassed:           12,
			DiffSizeLines:         45,
			FilesModified:         3,
			Notes:                 "Small targeted fix. Fast cycle.",
		},
		{
			RunID:                 "2026-02-06-seed05",
			Timestamp:             "2026-02-06T09:00:00+00:00",
			InputType:             "PRD",
			InputRef:              "observer-plane-prd.md",
			LLMModel:              "claude-4.6",
			PipelineStepsExecuted: []string{"ingest", "build", "audit", "ship"},
			DurationMinutes:       35,
			BuildSuccess:          true,
			TestsPassed:           55,
			TestsFailed:           1,
			LintErrors:            2,
			DiffSizeLines:         650,
			FilesCreated:          12,
			Notes:                 "Observer Plane Phase 1 build. This run.",
		},
	}
}

// Apply writes the sample records, skipping any that already exist.
func Apply(h *hub.Hub) (Result, error) {
	var res Result
	for _, r := range Records() {
		_, err := h.WriteRun(r)
		switch {
		case errors.Is(err, hub.ErrRecordExists):
			log.Printf("skip (exists): %s", r.RunID)
			res.Skipped++
		case err != nil:
			return res, err
		default:
			log.Printf("written: %s", r.RunID)
			res.Written++
		}
	}
	res.Total = h.RunCount()
	return res, nil
}
