package verdict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsplane/observer/internal/hub"
)

// goodSidecar has every check passing.
func goodSidecar() Sidecar {
	return Sidecar{
		"execution_context": map[string]any{
			"steps_completed": []any{"ingest", "build", "audit", "ship"},
		},
		"quality": map[string]any{
			"validation": map[string]any{
				"success":       true,
				"pytest_failed": float64(0),
				"ruff_issues":   float64(0),
			},
			"cursor_audit": map[string]any{
				"p0_count": float64(0),
			},
			"code_review": map[string]any{
				"critical_count": float64(0),
			},
			"pre_commit_safety": map[string]any{
				"status": "PASS",
			},
		},
		"error_taxonomy": map[string]any{
			"fail_category": "",
		},
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	h, err := hub.Open(t.TempDir())
	require.NoError(t, err)
	return NewEngine(h)
}

func TestGenerate_AllChecksPass(t *testing.T) {
	e := testEngine(t)
	v := e.Generate("artifact-1", goodSidecar())

	assert.Equal(t, VerdictPass, v.Verdict)
	assert.False(t, v.Degraded)
	assert.False(t, v.RetryEligible)
	assert.Empty(t, v.FailureSignature)
	assert.Empty(t, v.BlockingFailures)
	assert.Empty(t, v.AdvisoryFailures)
	assert.Len(t, v.CheckResults, 7)
	assert.Equal(t, SchemaVersion, v.SchemaVersion)
}

func TestGenerate_DegradedOnMissingSidecar(t *testing.T) {
	e := testEngine(t)

	v := e.Generate("artifact-1", nil)
	assert.Equal(t, VerdictPass, v.Verdict)
	assert.True(t, v.Degraded)
	assert.NotEmpty(t, v.DegradedReason)
	assert.Empty(t, v.CheckResults)
}

func TestGenerate_DegradedOnMissingSections(t *testing.T) {
	e := testEngine(t)

	noQuality := goodSidecar()
	delete(noQuality, "quality")
	v := e.Generate("artifact-1", noQuality)
	assert.True(t, v.Degraded)

	noTaxonomy := goodSidecar()
	delete(noTaxonomy, "error_taxonomy")
	v = e.Generate("artifact-1", noTaxonomy)
	assert.True(t, v.Degraded)
}

func TestGenerate_BuildFailure(t *testing.T) {
	e := testEngine(t)

	sc := goodSidecar()
	sc["error_taxonomy"] = map[string]any{"fail_category": "build"}
	v := e.Generate("artifact-1", sc)

	assert.Equal(t, VerdictFail, v.Verdict)
	assert.Equal(t, []string{CheckBuildSuccess}, v.BlockingFailures)
	assert.True(t, v.RetryEligible)
	assert.Len(t, v.FailureSignature, 16)
	require.NotEmpty(t, v.FixHints)
	assert.Equal(t, "fix_build_error", v.FixHints[0].Action)
}

func TestGenerate_BuildStepNotRunPasses(t *testing.T) {
	e := testEngine(t)

	sc := goodSidecar()
	sc["execution_context"] = map[string]any{"steps_completed": []any{"ingest"}}
	sc["error_taxonomy"] = map[string]any{"fail_category": "build"}
	v := e.Generate("artifact-1", sc)

	assert.Equal(t, VerdictPass, v.Verdict)
}

func TestGenerate_AdvisoryOnlyIsWarn(t *testing.T) {
	e := testEngine(t)

	sc := goodSidecar()
	sc["quality"].(map[string]any)["validation"].(map[string]any)["ruff_issues"] = float64(3)
	v := e.Generate("artifact-1", sc)

	assert.Equal(t, VerdictWarn, v.Verdict)
	assert.Empty(t, v.BlockingFailures)
	assert.Equal(t, []string{CheckLintClean}, v.AdvisoryFailures)
	assert.False(t, v.RetryEligible)
	assert.Empty(t, v.FailureSignature)
}

func TestGenerate_SecretsFailureNotRetryEligible(t *testing.T) {
	e := testEngine(t)

	sc := goodSidecar()
	sc["quality"].(map[string]any)["pre_commit_safety"] = map[string]any{"status": "FAIL"}
	v := e.Generate("artifact-1", sc)

	assert.Equal(t, VerdictFail, v.Verdict)
	assert.Equal(t, []string{CheckSecretsClean}, v.BlockingFailures)
	assert.False(t, v.RetryEligible)
	assert.Empty(t, v.FixHints, "hints are only generated for retry-eligible verdicts")
}

func TestGenerate_FailingTestsScopedHint(t *testing.T) {
	e := testEngine(t)

	sc := goodSidecar()
	val := sc["quality"].(map[string]any)["validation"].(map[string]any)
	val["success"] = false
	val["pytest_failed"] = float64(2)
	sc["failed_test_names"] = []any{"test_login", "test_logout"}
	v := e.Generate("artifact-1", sc)

	assert.Equal(t, VerdictFail, v.Verdict)
	assert.True(t, v.RetryEligible)
	require.Len(t, v.FixHints, 1)
	assert.Equal(t, "fix_failing_tests", v.FixHints[0].Action)
	assert.Equal(t, []string{"test_login", "test_logout"}, v.FixHints[0].SuggestedScope)
}

func TestFailureSignature_Stability(t *testing.T) {
	a := FailureSignature([]string{"build_success", "tests_passing"})
	b := FailureSignature([]string{"tests_passing", "build_success"})
	assert.Equal(t, a, b, "signature must be order independent")
	assert.Len(t, a, 16)

	c := FailureSignature([]string{"build_success"})
	assert.NotEqual(t, a, c, "different failure sets must hash differently")
}

func TestWriteAndExists(t *testing.T) {
	e := testEngine(t)

	assert.False(t, e.Exists("artifact-1"))

	v := e.Generate("artifact-1", goodSidecar())
	path, err := e.Write(v)
	require.NoError(t, err)
	assert.True(t, e.Exists("artifact-1"))
	assert.Equal(t, "artifact-1.verdict.v1.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"schema_version": "verdict.v1"`)
}
