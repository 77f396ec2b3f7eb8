package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/model"
)

func testAgent(t *testing.T) (*Agent, *hub.Hub) {
	t.Helper()
	h, err := hub.Open(t.TempDir())
	require.NoError(t, err)
	return NewAgent(h, DefaultConfig()), h
}

func analysisRun(id, ts string, duration float64, buildOK bool) model.RunRecord {
	return model.RunRecord{
		RunID:           id,
		Timestamp:       ts,
		InputType:       "PRD",
		InputRef:        "docs/prd.md",
		DurationMinutes: duration,
		BuildSuccess:    buildOK,
	}
}

func TestRun_EmptyHub(t *testing.T) {
	a, h := testAgent(t)

	result := a.Run()
	assert.True(t, result.Success)
	assert.Zero(t, result.RunsAnalyzed)
	assert.Zero(t, result.FindingsCount)
	assert.NotEmpty(t, result.ReportFilename)
	assert.Contains(t, result.ReportContent, "No runs found in the Context Hub")

	names, err := h.ListAnalyses()
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestRun_FlagsThresholdViolations(t *testing.T) {
	a, h := testAgent(t)

	// Half the builds fail and the median cycle time is over target.
	_, err := h.WriteRun(analysisRun("2026-02-04-aaa", "2026-02-04T09:00:00+00:00", 45, true))
	require.NoError(t, err)
	_, err = h.WriteRun(analysisRun("2026-02-05-bbb", "2026-02-05T09:00:00+00:00", 45, false))
	require.NoError(t, err)

	result := a.Run()
	require.True(t, result.Success)
	assert.Equal(t, 2, result.RunsAnalyzed)

	var messages []string
	for _, f := range result.Findings {
		messages = append(messages, f.Message)
	}
	joined := strings.Join(messages, "\n")
	assert.Contains(t, joined, "below target")
	assert.Contains(t, joined, "Median cycle time 45.0m exceeds target 30m")

	reliability := findBySeverity(result.Findings, SeverityCritical)
	require.NotNil(t, reliability)
	assert.Equal(t, CategoryReliability, reliability.Category)
	assert.Contains(t, reliability.Detail, "2026-02-05-bbb")
}

func TestRun_AllHealthyIsInfoOnly(t *testing.T) {
	a, h := testAgent(t)

	_, err := h.WriteRun(analysisRun("2026-02-04-aaa", "2026-02-04T09:00:00+00:00", 20, true))
	require.NoError(t, err)

	result := a.Run()
	require.True(t, result.Success)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, SeverityInfo, result.Findings[0].Severity)
	assert.Equal(t, "All builds succeeded in this window", result.Findings[0].Message)
}

func TestRun_SplitsWindowForTrends(t *testing.T) {
	h, err := hub.Open(t.TempDir())
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.AnalysisWindowSize = 2
	a := NewAgent(h, cfg)

	// Older half succeeds quickly, newer half fails slowly.
	ids := []string{"2026-02-01-aaa", "2026-02-02-bbb", "2026-02-03-ccc", "2026-02-04-ddd"}
	for i, id := range ids {
		ts := fmt.Sprintf("2026-02-0%dT09:00:00+00:00", i+1)
		_, err := h.WriteRun(analysisRun(id, ts, 20+float64(i*20), i < 2))
		require.NoError(t, err)
	}

	result := a.Run()
	require.True(t, result.Success)
	assert.Equal(t, 2, result.RunsAnalyzed, "analysis covers only the current window")

	var trendFindings int
	for _, f := range result.Findings {
		if f.Category == CategoryTrend {
			trendFindings++
		}
	}
	assert.Greater(t, trendFindings, 0, "degrading halves must produce trend findings")
}

func TestRun_ReportPersistedAndLogged(t *testing.T) {
	a, h := testAgent(t)

	_, err := h.WriteRun(analysisRun("2026-02-04-aaa", "2026-02-04T09:00:00+00:00", 20, true))
	require.NoError(t, err)

	result := a.Run()
	require.True(t, result.Success)

	content, err := h.ReadAnalysis(result.ReportFilename)
	require.NoError(t, err)
	assert.Equal(t, result.ReportContent, content)

	logged := a.monitor.RecentRuns(1)
	require.Len(t, logged, 1)
	assert.Equal(t, "analysis_agent", logged[0].AgentName)
	assert.True(t, logged[0].Success)
	assert.Equal(t, 1, logged[0].RunsAnalyzed)
}

func findBySeverity(findings []Finding, severity Severity) *Finding {
	for i := range findings {
		if findings[i].Severity == severity {
			return &findings[i]
		}
	}
	return nil
}
