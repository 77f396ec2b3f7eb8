package readiness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/seed"
)

func TestAssess_EmptyHub(t *testing.T) {
	h, err := hub.Open(t.TempDir())
	require.NoError(t, err)

	report, err := NewChecker(h).Assess()
	require.NoError(t, err)

	assert.False(t, report.Ready)
	assert.Len(t, report.Checks, 14)
	assert.NotEmpty(t, report.CheckedAt)

	// An empty hub trivially satisfies the no-pending-proposals criterion.
	pending := checkByName(t, report, "No pending proposals (all resolved)")
	assert.True(t, pending.Passed)

	runs := checkByName(t, report, "Total runs recorded")
	assert.False(t, runs.Passed)
	assert.Equal(t, float64(minTotalRuns), runs.Target)
}

func TestAssess_SeedRunsDoNotCountAsReal(t *testing.T) {
	h, err := hub.Open(t.TempDir())
	require.NoError(t, err)
	_, err = seed.Apply(h)
	require.NoError(t, err)

	report, err := NewChecker(h).Assess()
	require.NoError(t, err)

	total := checkByName(t, report, "Total runs recorded")
	assert.Equal(t, 5.0, total.Actual)

	real := checkByName(t, report, "Real (non-seed) runs")
	assert.Equal(t, 0.0, real.Actual)
	assert.False(t, real.Passed)
}

func TestRenderText_NotReady(t *testing.T) {
	h, err := hub.Open(t.TempDir())
	require.NoError(t, err)

	report, err := NewChecker(h).Assess()
	require.NoError(t, err)

	text := RenderText(report)
	assert.Contains(t, text, "Graduation Readiness Assessment")
	assert.Contains(t, text, "NOT YET:")
	assert.Contains(t, text, "What's needed:")
	assert.True(t, strings.Contains(text, "[FAIL]"))
	assert.NotContains(t, text, "READY FOR AUTO-APPLY")
}

func checkByName(t *testing.T, r *Report, name string) Check {
	t.Helper()
	for _, ch := range r.Checks {
		if ch.Name == name {
			return ch
		}
	}
	t.Fatalf("check %q not found", name)
	return Check{}
}
