package verdict

// Check severities. Blocking failures drive verdict=fail; advisory failures
// only ever produce verdict=warn.
const (
	SeverityBlocking = "blocking"
	SeverityAdvisory = "advisory"
)

// Check IDs.
const (
	CheckBuildSuccess    = "build_success"
	CheckTestsPassing    = "tests_passing"
	CheckLintClean       = "lint_clean"
	CheckTypeClean       = "type_clean"
	CheckArchP0Clear     = "arch_p0_clear"
	CheckCodeReviewClear = "code_review_clear"
	CheckSecretsClean    = "secrets_clean"
)

type checkDef struct {
	ID          string
	Description string
	Severity    string
	Eval        func(s Sidecar) bool
}

// checkRegistry is the fixed, ordered set of checks. Each evaluator returns
// true when the check passes; a check whose pipeline step never ran passes
// as not-applicable.
var checkRegistry = []checkDef{
	{
		ID:          CheckBuildSuccess,
		Description: "Build completed successfully",
		Severity:    SeverityBlocking,
		Eval: func(s Sidecar) bool {
			// Pass if the build step was never run (dry-run / stop-at).
			if !s.StepCompleted("build") {
				return true
			}
			return s.String("error_taxonomy.fail_category", "") != "build"
		},
	},
	{
		ID:          CheckTestsPassing,
		Description: "All tests passing",
		Severity:    SeverityBlocking,
		Eval: func(s Sidecar) bool {
			val := s.Section("quality.validation")
			if val == nil {
				return true
			}
			success, _ := val["success"].(bool)
			return success && numberOf(val["pytest_failed"]) == 0
		},
	},
	{
		ID:          CheckLintClean,
		Description: "No lint errors",
		Severity:    SeverityAdvisory,
		Eval: func(s Sidecar) bool {
			val := s.Section("quality.validation")
			if val == nil {
				return true
			}
			return numberOf(val["ruff_issues"]) == 0
		},
	},
	{
		ID:          CheckTypeClean,
		Description: "No type errors",
		Severity:    SeverityAdvisory,
		// The upstream pipeline does not yet emit type-check telemetry.
		Eval: func(s Sidecar) bool { return true },
	},
	{
		ID:          CheckArchP0Clear,
		Description: "No P0 architecture violations",
		Severity:    SeverityBlocking,
		Eval: func(s Sidecar) bool {
			ca := s.Section("quality.cursor_audit")
			if ca == nil {
				return true
			}
			return numberOf(ca["p0_count"]) == 0
		},
	},
	{
		ID:          CheckCodeReviewClear,
		Description: "No critical code review findings",
		Severity:    SeverityBlocking,
		Eval: func(s Sidecar) bool {
			cr := s.Section("quality.code_review")
			if cr == nil {
				return true
			}
			return numberOf(cr["critical_count"]) == 0
		},
	},
	{
		ID:          CheckSecretsClean,
		Description: "No secret scan failures",
		Severity:    SeverityBlocking,
		Eval: func(s Sidecar) bool {
			pcs := s.Section("quality.pre_commit_safety")
			if pcs == nil {
				return true
			}
			status, _ := pcs["status"].(string)
			return status != "FAIL"
		},
	},
}

// retryEligibleChecks are fixable by automated re-execution. Code review and
// secret findings require human judgment and are never retried.
var retryEligibleChecks = map[string]bool{
	CheckBuildSuccess: true,
	CheckTestsPassing: true,
	CheckArchP0Clear:  true,
}

func numberOf(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
