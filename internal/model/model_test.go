package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateRunID_Format(t *testing.T) {
	id := GenerateRunID()
	if len(id) < 12 {
		t.Fatalf("run id too short: %q", id)
	}
	if id[4] != '-' || id[7] != '-' || id[10] != '-' {
		t.Errorf("run id missing date prefix: %q", id)
	}
	if id != strings.ToLower(id) {
		t.Errorf("run id must be lowercase: %q", id)
	}
}

func TestGenerateRunID_Sortable(t *testing.T) {
	a := GenerateRunID()
	b := GenerateRunID()
	if a == b {
		t.Fatalf("consecutive ids collided: %q", a)
	}
	if b < a {
		t.Errorf("ids not monotonically sortable: %q then %q", a, b)
	}
}

func TestGenerateProposalID_Format(t *testing.T) {
	id := GenerateProposalID()
	if !strings.HasPrefix(id, "prop-") {
		t.Errorf("proposal id missing prefix: %q", id)
	}
	if GenerateProposalID() == id {
		t.Error("consecutive proposal ids collided")
	}
}

func TestMarshalRecord_EmptySlicesNotNull(t *testing.T) {
	data, err := MarshalRecord(RunRecord{RunID: "r1", Timestamp: CurrentTimestamp()})
	if err != nil {
		t.Fatalf("MarshalRecord failed: %v", err)
	}
	s := string(data)
	if strings.Contains(s, `"pipeline_steps_executed": null`) {
		t.Error("pipeline_steps_executed serialized as null")
	}
	if strings.Contains(s, `"step_timings": null`) {
		t.Error("step_timings serialized as null")
	}
}

func TestStepTiming_RoundTrip(t *testing.T) {
	r := RunRecord{
		RunID:     "r1",
		Timestamp: "2026-02-04T09:00:00+00:00",
		StepTimings: []StepTiming{
			{Step: "build", Seconds: 420.5},
			{Step: "audit", Seconds: 61},
		},
	}
	data, err := MarshalRecord(r)
	if err != nil {
		t.Fatalf("MarshalRecord failed: %v", err)
	}
	if !strings.Contains(string(data), `"build",`) {
		t.Errorf("step timing not serialized as array pair: %s", data)
	}

	back, err := UnmarshalRecord(data)
	if err != nil {
		t.Fatalf("UnmarshalRecord failed: %v", err)
	}
	if len(back.StepTimings) != 2 {
		t.Fatalf("step timings: got %d, want 2", len(back.StepTimings))
	}
	if back.StepTimings[0].Step != "build" || back.StepTimings[0].Seconds != 420.5 {
		t.Errorf("step timing[0]: got %+v", back.StepTimings[0])
	}
}

func TestStepTiming_RejectsBadPair(t *testing.T) {
	var st StepTiming
	if err := json.Unmarshal([]byte(`["build"]`), &st); err == nil {
		t.Error("expected error for 1-element pair")
	}
	if err := json.Unmarshal([]byte(`{"step":"build"}`), &st); err == nil {
		t.Error("expected error for object form")
	}
}

func TestUnmarshalRecord_DropsUnknownFields(t *testing.T) {
	raw := `{"run_id":"r1","timestamp":"2026-02-04T09:00:00+00:00","future_field":{"x":1}}`
	r, err := UnmarshalRecord([]byte(raw))
	if err != nil {
		t.Fatalf("UnmarshalRecord failed: %v", err)
	}
	if r.RunID != "r1" {
		t.Errorf("run_id: got %q", r.RunID)
	}
	if r.PipelineStepsExecuted == nil {
		t.Error("nil slice not normalized")
	}
}

func TestValidate_CleanRecord(t *testing.T) {
	r := RunRecord{
		RunID:                 "2026-02-04-abc",
		Timestamp:             "2026-02-04T09:00:00+00:00",
		InputType:             "PRD",
		PipelineStepsExecuted: []string{"ingest", "build"},
	}
	if issues := Validate(r); len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
}

func TestValidate_CollectsAllIssues(t *testing.T) {
	r := RunRecord{
		InputType:   "NONSENSE",
		TestsPassed: -1,
		IsRecursive: true,
	}
	issues := Validate(r)
	if len(issues) < 4 {
		t.Fatalf("expected at least 4 issues (run_id, timestamp, input_type, tests_passed, recursive), got %v", issues)
	}
	joined := strings.Join(issues, "\n")
	for _, want := range []string{"run_id", "timestamp", "input_type", "tests_passed", "recursive_parent_id"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing issue mentioning %q in %v", want, issues)
		}
	}
}

func TestValidate_TimestampLayouts(t *testing.T) {
	for _, ts := range []string{
		"2026-02-04T09:00:00+00:00",
		"2026-02-04T09:00:00Z",
		"2026-02-04T09:00:00",
		"2026-02-04",
	} {
		r := RunRecord{RunID: "r1", Timestamp: ts}
		if issues := Validate(r); len(issues) != 0 {
			t.Errorf("timestamp %q rejected: %v", ts, issues)
		}
	}
	r := RunRecord{RunID: "r1", Timestamp: "04/02/2026"}
	if issues := Validate(r); len(issues) == 0 {
		t.Error("invalid timestamp accepted")
	}
}

func TestValidate_BadPipelineStep(t *testing.T) {
	r := RunRecord{
		RunID:                 "r1",
		Timestamp:             "2026-02-04",
		PipelineStepsExecuted: []string{"build", "compile"},
	}
	issues := Validate(r)
	if len(issues) != 1 || !strings.Contains(issues[0], "compile") {
		t.Errorf("expected single issue about step, got %v", issues)
	}
}
