package proposal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsplane/observer/internal/analysis"
	"github.com/obsplane/observer/internal/hub"
)

func testEngine(t *testing.T) (*Engine, *hub.Hub) {
	t.Helper()
	h, err := hub.Open(t.TempDir())
	require.NoError(t, err)
	return NewEngine(h, analysis.DefaultConfig()), h
}

func durationFinding() analysis.Finding {
	return analysis.Finding{
		Severity: analysis.SeverityWarning,
		Category: analysis.CategoryDuration,
		Message:  "Median cycle time 33.0m exceeds target 30m",
	}
}

func TestGenerate_NoMatchingRules(t *testing.T) {
	e, h := testEngine(t)

	findings := []analysis.Finding{{
		Severity: analysis.SeverityInfo,
		Category: analysis.CategoryReliability,
		Message:  "All builds succeeded in this window",
	}}
	p, err := e.Generate(findings, "analysis-x.md")
	require.NoError(t, err)
	assert.Nil(t, p)

	ids, err := h.ListProposals()
	require.NoError(t, err)
	assert.Empty(t, ids, "no proposal file may be written when no rule matches")
}

func TestGenerate_SlowCycleTime(t *testing.T) {
	e, _ := testEngine(t)

	p, err := e.Generate([]analysis.Finding{durationFinding()}, "analysis-x.md")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, ImpactLow, p.ImpactLevel)
	assert.Equal(t, "v0.1.0", p.VersionFrom)
	assert.Equal(t, "v0.1.1", p.VersionTo)
	assert.Equal(t, "analysis-x.md", p.SourceReport)

	require.Len(t, p.ParameterDiffs, 1)
	d := p.ParameterDiffs[0]
	assert.Equal(t, "targets.median_cycle_time_minutes", d.Path)
	assert.Equal(t, 30.0, d.OldValue)
	assert.Equal(t, 33.0, d.NewValue)
}

func TestGenerate_SecondPendingRefused(t *testing.T) {
	e, _ := testEngine(t)

	_, err := e.Generate([]analysis.Finding{durationFinding()}, "")
	require.NoError(t, err)

	_, err = e.Generate([]analysis.Finding{durationFinding()}, "")
	assert.ErrorIs(t, err, ErrPendingProposalExists)
}

func TestGenerate_DedupesPaths(t *testing.T) {
	e, _ := testEngine(t)

	p, err := e.Generate([]analysis.Finding{durationFinding(), durationFinding()}, "")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Len(t, p.ParameterDiffs, 1, "first diff per path wins")
}

func TestGenerate_CriticalFindingIsHighImpact(t *testing.T) {
	e, _ := testEngine(t)

	findings := []analysis.Finding{{
		Severity: analysis.SeverityCritical,
		Category: analysis.CategoryReliability,
		Message:  "Build success rate 60% is below target 90%",
	}}
	p, err := e.Generate(findings, "")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, ImpactHigh, p.ImpactLevel)
	assert.Equal(t, "v0.2.0", p.VersionTo, "high impact bumps minor")
	require.Len(t, p.ParameterDiffs, 1)
	assert.Equal(t, "targets.build_success_rate", p.ParameterDiffs[0].Path)
	assert.Equal(t, 0.85, p.ParameterDiffs[0].NewValue)
}

func TestGenerate_TrendRuleRespectsWindowCap(t *testing.T) {
	e, h := testEngine(t)

	_, err := h.WriteParameters("v0.1.0", map[string]any{
		"version":  "v0.1.0",
		"observer": map[string]any{"analysis_window_size": float64(30)},
	})
	require.NoError(t, err)

	findings := []analysis.Finding{{
		Severity: analysis.SeverityCritical,
		Category: analysis.CategoryTrend,
		Message:  "Build reliability is trending downward (degrading)",
	}}
	p, err := e.Generate(findings, "")
	require.NoError(t, err)
	assert.Nil(t, p, "window already at cap, no change to propose")
}

func TestApprove_AppliesDiffsAndBumpsVersion(t *testing.T) {
	e, h := testEngine(t)

	_, err := h.WriteParameters("v0.1.0", map[string]any{
		"version":     "v0.1.0",
		"description": "Initial parameters",
		"targets": map[string]any{
			"median_cycle_time_minutes": float64(30),
			"build_success_rate":        0.9,
		},
	})
	require.NoError(t, err)

	p, err := e.Generate([]analysis.Finding{durationFinding()}, "analysis-x.md")
	require.NoError(t, err)
	require.NotNil(t, p)

	approved, err := e.Approve(p.ProposalID, "alex")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "alex", approved.ResolvedBy)
	assert.NotEmpty(t, approved.ResolvedAt)

	params, err := h.ReadParameters("v0.1.1")
	require.NoError(t, err)
	require.NotNil(t, params)
	assert.Equal(t, "v0.1.1", params["version"])
	assert.Equal(t, p.ProposalID, params["applied_from_proposal"])

	targets := params["targets"].(map[string]any)
	assert.Equal(t, 33.0, targets["median_cycle_time_minutes"])
	assert.Equal(t, 0.9, targets["build_success_rate"], "untouched parameters must be preserved")

	pending, err := e.PendingProposals()
	require.NoError(t, err)
	assert.Empty(t, pending, "approval releases the single-pending slot")
}

func TestReject_FlipsStatusOnly(t *testing.T) {
	e, h := testEngine(t)

	p, err := e.Generate([]analysis.Finding{durationFinding()}, "")
	require.NoError(t, err)

	rejected, err := e.Reject(p.ProposalID, "too aggressive", "alex")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "too aggressive", rejected.RejectionReason)

	versions, err := h.ParameterVersions()
	require.NoError(t, err)
	assert.Empty(t, versions, "reject must not touch parameters")

	// Slot freed: a new proposal can be generated.
	p2, err := e.Generate([]analysis.Finding{durationFinding()}, "")
	require.NoError(t, err)
	assert.NotNil(t, p2)
}

func TestResolve_NotPending(t *testing.T) {
	e, _ := testEngine(t)

	p, err := e.Generate([]analysis.Finding{durationFinding()}, "")
	require.NoError(t, err)
	_, err = e.Reject(p.ProposalID, "", "alex")
	require.NoError(t, err)

	_, err = e.Approve(p.ProposalID, "alex")
	assert.ErrorIs(t, err, ErrProposalNotPending)
	_, err = e.Reject(p.ProposalID, "", "alex")
	assert.ErrorIs(t, err, ErrProposalNotPending)
}

func TestResolve_UnknownProposal(t *testing.T) {
	e, _ := testEngine(t)

	_, err := e.Approve("prop-none", "alex")
	assert.ErrorIs(t, err, ErrNoProposalFound)
}

func TestBumpVersion(t *testing.T) {
	cases := []struct {
		version string
		impact  ImpactLevel
		want    string
	}{
		{"v0.1.0", ImpactLow, "v0.1.1"},
		{"v0.1.9", ImpactLow, "v0.1.10"},
		{"1.2.3", ImpactMedium, "v1.3.0"},
		{"v2.5.7", ImpactHigh, "v2.6.0"},
		{"garbage", ImpactLow, "v0.2.0"},
		{"", ImpactHigh, "v0.2.0"},
	}
	for _, c := range cases {
		if got := BumpVersion(c.version, c.impact); got != c.want {
			t.Errorf("BumpVersion(%q, %s): got %q, want %q", c.version, c.impact, got, c.want)
		}
	}
}

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, ValidateTransition(StatusPending, StatusApproved))
	assert.NoError(t, ValidateTransition(StatusPending, StatusRejected))
	assert.Error(t, ValidateTransition(StatusApproved, StatusRejected))
	assert.Error(t, ValidateTransition(StatusRejected, StatusPending))
}
