package verdict

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/jsonio"
)

// SchemaVersion tags every verdict document.
const SchemaVersion = "verdict.v1"

// Verdict outcomes.
const (
	VerdictPass = "pass"
	VerdictWarn = "warn"
	VerdictFail = "fail"
)

// CheckResult is the outcome of one registry check.
type CheckResult struct {
	CheckID     string `json:"check_id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Passed      bool   `json:"passed"`
}

// FixHint scopes an automated retry for one failing blocking check.
type FixHint struct {
	CheckID        string   `json:"check_id"`
	Action         string   `json:"action"`
	SuggestedScope []string `json:"suggested_scope"`
	Detail         string   `json:"detail"`
}

// Verdict is the decision document written once per artifact.
type Verdict struct {
	SchemaVersion    string        `json:"schema_version"`
	ArtifactID       string        `json:"artifact_id"`
	GeneratedAt      string        `json:"generated_at"`
	Verdict          string        `json:"verdict"`
	Degraded         bool          `json:"degraded"`
	DegradedReason   string        `json:"degraded_reason"`
	CheckResults     []CheckResult `json:"check_results"`
	BlockingFailures []string      `json:"blocking_failures"`
	AdvisoryFailures []string      `json:"advisory_failures"`
	RetryEligible    bool          `json:"retry_eligible"`
	FailureSignature string        `json:"failure_signature"`
	FixHints         []FixHint     `json:"fix_hints"`
}

// Engine generates and persists verdicts for a Context Hub.
type Engine struct {
	hub *hub.Hub
}

func NewEngine(h *hub.Hub) *Engine {
	return &Engine{hub: h}
}

// Generate derives a verdict from sidecar telemetry. A missing or malformed
// sidecar yields a degraded pass: absence of telemetry must never block the
// pipeline.
func (e *Engine) Generate(artifactID string, sidecar Sidecar) Verdict {
	if sidecar == nil {
		return degradedVerdict(artifactID, "Sidecar data is missing or malformed")
	}
	if _, ok := sidecar["quality"]; !ok {
		return degradedVerdict(artifactID, "Sidecar missing required quality/error_taxonomy fields")
	}
	if _, ok := sidecar["error_taxonomy"]; !ok {
		return degradedVerdict(artifactID, "Sidecar missing required quality/error_taxonomy fields")
	}

	results := make([]CheckResult, 0, len(checkRegistry))
	var blockingFailed, advisoryFailed []string
	for _, def := range checkRegistry {
		passed := def.Eval(sidecar)
		results = append(results, CheckResult{
			CheckID:     def.ID,
			Description: def.Description,
			Severity:    def.Severity,
			Passed:      passed,
		})
		if passed {
			continue
		}
		if def.Severity == SeverityBlocking {
			blockingFailed = append(blockingFailed, def.ID)
		} else {
			advisoryFailed = append(advisoryFailed, def.ID)
		}
	}

	outcome := VerdictPass
	switch {
	case len(blockingFailed) > 0:
		outcome = VerdictFail
	case len(advisoryFailed) > 0:
		outcome = VerdictWarn
	}

	retryEligible := false
	if outcome == VerdictFail {
		for _, id := range blockingFailed {
			if retryEligibleChecks[id] {
				retryEligible = true
				break
			}
		}
	}

	signature := ""
	if len(blockingFailed) > 0 {
		signature = FailureSignature(blockingFailed)
	}

	var hints []FixHint
	if retryEligible {
		hints = fixHints(sidecar, blockingFailed)
	}
	if hints == nil {
		hints = []FixHint{}
	}
	if blockingFailed == nil {
		blockingFailed = []string{}
	}
	if advisoryFailed == nil {
		advisoryFailed = []string{}
	}

	return Verdict{
		SchemaVersion:    SchemaVersion,
		ArtifactID:       artifactID,
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		Verdict:          outcome,
		Degraded:         false,
		DegradedReason:   "",
		CheckResults:     results,
		BlockingFailures: blockingFailed,
		AdvisoryFailures: advisoryFailed,
		RetryEligible:    retryEligible,
		FailureSignature: signature,
		FixHints:         hints,
	}
}

// Write persists a verdict atomically under
// verdicts/{artifact_id}.verdict.v1.json.
func (e *Engine) Write(v Verdict) (string, error) {
	path := filepath.Join(e.hub.VerdictsDir, v.ArtifactID+".verdict.v1.json")
	if err := jsonio.AtomicWrite(path, v); err != nil {
		return "", err
	}
	return path, nil
}

// Exists reports whether a verdict is already stored for the artifact.
func (e *Engine) Exists(artifactID string) bool {
	_, err := os.Stat(filepath.Join(e.hub.VerdictsDir, artifactID+".verdict.v1.json"))
	return err == nil
}

// FailureSignature computes a stable 16-hex-char hash over the sorted set of
// failing blocking check IDs. Identical failure sets across runs hash
// identically, which lets upstream loop detection spot recurrences.
func FailureSignature(failingChecks []string) string {
	ids := append([]string(nil), failingChecks...)
	sort.Strings(ids)
	sum := sha256.Sum256([]byte(strings.Join(ids, ",")))
	return hex.EncodeToString(sum[:])[:16]
}

func degradedVerdict(artifactID, reason string) Verdict {
	return Verdict{
		SchemaVersion:    SchemaVersion,
		ArtifactID:       artifactID,
		GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
		Verdict:          VerdictPass,
		Degraded:         true,
		DegradedReason:   reason,
		CheckResults:     []CheckResult{},
		BlockingFailures: []string{},
		AdvisoryFailures: []string{},
		RetryEligible:    false,
		FailureSignature: "",
		FixHints:         []FixHint{},
	}
}

const maxHintScope = 10

func fixHints(sidecar Sidecar, blockingFailed []string) []FixHint {
	var hints []FixHint
	for _, checkID := range blockingFailed {
		switch checkID {
		case CheckTestsPassing:
			failed := sidecar.Strings("failed_test_names")
			scope := failed
			if len(scope) > maxHintScope {
				scope = scope[:maxHintScope]
			}
			if scope == nil {
				scope = []string{}
			}
			hints = append(hints, FixHint{
				CheckID:        checkID,
				Action:         "fix_failing_tests",
				SuggestedScope: scope,
				Detail:         fmt.Sprintf("%d test(s) failing", len(failed)),
			})
		case CheckBuildSuccess:
			hints = append(hints, FixHint{
				CheckID:        checkID,
				Action:         "fix_build_error",
				SuggestedScope: []string{},
				Detail:         sidecar.String("error_taxonomy.fail_category", "build"),
			})
		case CheckArchP0Clear:
			hints = append(hints, FixHint{
				CheckID:        checkID,
				Action:         "fix_architecture_violation",
				SuggestedScope: []string{},
				Detail:         fmt.Sprintf("%.0f P0 violation(s)", sidecar.Number("quality.cursor_audit.p0_count", 0)),
			})
		case CheckCodeReviewClear:
			hints = append(hints, FixHint{
				CheckID:        checkID,
				Action:         "fix_critical_review_findings",
				SuggestedScope: []string{},
				Detail:         fmt.Sprintf("%.0f critical finding(s)", sidecar.Number("quality.code_review.critical_count", 0)),
			})
		case CheckSecretsClean:
			hints = append(hints, FixHint{
				CheckID:        checkID,
				Action:         "remove_exposed_secrets",
				SuggestedScope: []string{},
				Detail:         "Secret scan failure requires manual intervention",
			})
		}
	}
	return hints
}
