// Package model defines the immutable run record contract shared between the
// execution pipeline and the observer plane. Records are constructed once,
// validated, and never mutated after they reach the Context Hub.
package model

import (
	"encoding/json"
	"fmt"
)

// RunRecord describes one automated pipeline execution. Fields are fixed at
// construction time; the store refuses overwrites, so a persisted record is
// effectively frozen.
type RunRecord struct {
	// Identity
	RunID  string `json:"run_id"`
	Source string `json:"source"`

	// Input
	InputType string `json:"input_type"`
	InputRef  string `json:"input_ref"`

	// Timing
	Timestamp       string  `json:"timestamp"` // ISO 8601
	DurationMinutes float64 `json:"duration_minutes"`

	// Execution context
	LLMModel              string       `json:"llm_model"`
	PipelineStepsExecuted []string     `json:"pipeline_steps_executed"`
	StepTimings           []StepTiming `json:"step_timings"`

	// Outcomes. Objective counters only.
	BuildSuccess  bool `json:"build_success"`
	TestsPassed   int  `json:"tests_passed"`
	TestsFailed   int  `json:"tests_failed"`
	LintErrors    int  `json:"lint_errors"`
	TypeErrors    int  `json:"type_errors"`
	DiffSizeLines int  `json:"diff_size_lines"`
	FilesCreated  int  `json:"files_created"`
	FilesModified int  `json:"files_modified"`

	// Human involvement
	ManualIntervention       bool   `json:"manual_intervention"`
	ManualInterventionReason string `json:"manual_intervention_reason"`

	Notes string `json:"notes"`

	// Extended telemetry
	ModelProvider     string  `json:"model_provider"`
	ModelName         string  `json:"model_name"`
	TokensInput       int     `json:"tokens_input"`
	TokensOutput      int     `json:"tokens_output"`
	CostUSD           float64 `json:"cost_usd"`
	RetryCount        int     `json:"retry_count"`
	FailCategory      string  `json:"fail_category"`
	FailStage         string  `json:"fail_stage"`
	InputContentHash  string  `json:"input_content_hash"`
	IsRecursive       bool    `json:"is_recursive"`
	RecursiveParentID string  `json:"recursive_parent_id"`
	IterationNumber   int     `json:"iteration_number"`
}

// StepTiming is one (step, seconds) pair. It serializes as a two-element JSON
// array so step order survives round-trips.
type StepTiming struct {
	Step    string
	Seconds float64
}

func (t StepTiming) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{t.Step, t.Seconds})
}

func (t *StepTiming) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("step timing must be a [step, seconds] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("step timing must have exactly 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &t.Step); err != nil {
		return fmt.Errorf("step timing step name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &t.Seconds); err != nil {
		return fmt.Errorf("step timing seconds: %w", err)
	}
	return nil
}

// MarshalRecord serializes a record for storage. List-typed fields always
// serialize as JSON arrays, never null, so stored files stay diffable.
func MarshalRecord(r RunRecord) ([]byte, error) {
	if r.PipelineStepsExecuted == nil {
		r.PipelineStepsExecuted = []string{}
	}
	if r.StepTimings == nil {
		r.StepTimings = []StepTiming{}
	}
	return json.MarshalIndent(r, "", "  ")
}

// UnmarshalRecord deserializes a stored record. Unknown fields from future
// schema versions are dropped silently, not rejected.
func UnmarshalRecord(data []byte) (RunRecord, error) {
	var r RunRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return RunRecord{}, fmt.Errorf("unmarshal run record: %w", err)
	}
	if r.PipelineStepsExecuted == nil {
		r.PipelineStepsExecuted = []string{}
	}
	if r.StepTimings == nil {
		r.StepTimings = []StepTiming{}
	}
	return r, nil
}
