package model

import (
	"fmt"
	"time"
)

// Validate checks a run record against the storage contract and returns every
// issue found, not just the first. Bad data in the Context Hub is worse than
// no data, so the rules are intentionally strict.
func Validate(r RunRecord) []string {
	var issues []string

	if r.RunID == "" {
		issues = append(issues, "run_id is required")
	}

	if r.Timestamp == "" {
		issues = append(issues, "timestamp is required")
	} else if !parseableTimestamp(r.Timestamp) {
		issues = append(issues, fmt.Sprintf("timestamp is not valid ISO 8601: %s", r.Timestamp))
	}

	if r.DurationMinutes < 0 {
		issues = append(issues, fmt.Sprintf("duration_minutes cannot be negative: %g", r.DurationMinutes))
	}
	if r.TestsPassed < 0 {
		issues = append(issues, fmt.Sprintf("tests_passed cannot be negative: %d", r.TestsPassed))
	}
	if r.TestsFailed < 0 {
		issues = append(issues, fmt.Sprintf("tests_failed cannot be negative: %d", r.TestsFailed))
	}
	if r.LintErrors < 0 {
		issues = append(issues, fmt.Sprintf("lint_errors cannot be negative: %d", r.LintErrors))
	}
	if r.TypeErrors < 0 {
		issues = append(issues, fmt.Sprintf("type_errors cannot be negative: %d", r.TypeErrors))
	}

	if r.InputType != "" && !IsValidInputType(r.InputType) {
		issues = append(issues, fmt.Sprintf("input_type %q is not a known input type", r.InputType))
	}
	for _, step := range r.PipelineStepsExecuted {
		if !IsValidPipelineStep(step) {
			issues = append(issues, fmt.Sprintf("unknown pipeline step: %q", step))
		}
	}

	if r.FailCategory != "" && !IsValidFailCategory(r.FailCategory) {
		issues = append(issues, fmt.Sprintf("fail_category %q is not a known category", r.FailCategory))
	}
	if r.TokensInput < 0 {
		issues = append(issues, fmt.Sprintf("tokens_input cannot be negative: %d", r.TokensInput))
	}
	if r.TokensOutput < 0 {
		issues = append(issues, fmt.Sprintf("tokens_output cannot be negative: %d", r.TokensOutput))
	}
	if r.CostUSD < 0 {
		issues = append(issues, fmt.Sprintf("cost_usd cannot be negative: %g", r.CostUSD))
	}
	if r.IterationNumber < 0 {
		issues = append(issues, fmt.Sprintf("iteration_number cannot be negative: %d", r.IterationNumber))
	}
	if r.IsRecursive && r.RecursiveParentID == "" {
		issues = append(issues, "is_recursive=true requires non-empty recursive_parent_id")
	}

	return issues
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseableTimestamp(ts string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, ts); err == nil {
			return true
		}
	}
	return false
}
