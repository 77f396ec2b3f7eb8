package hub

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsplane/observer/internal/model"
)

func testRecord(id, ts string) model.RunRecord {
	return model.RunRecord{
		RunID:        id,
		Timestamp:    ts,
		InputType:    "PRD",
		BuildSuccess: true,
	}
}

func TestWriteRun_RoundTrip(t *testing.T) {
	h, err := Open(t.TempDir())
	require.NoError(t, err)

	r := testRecord("2026-02-04-aaa", "2026-02-04T09:00:00+00:00")
	r.TestsPassed = 12
	r.Notes = "first run"

	path, err := h.WriteRun(r)
	require.NoError(t, err)
	assert.FileExists(t, path)

	back, err := h.ReadRun(r.RunID)
	require.NoError(t, err)
	require.NotNil(t, back)
	assert.Equal(t, r.RunID, back.RunID)
	assert.Equal(t, 12, back.TestsPassed)
	assert.Equal(t, "first run", back.Notes)
}

func TestWriteRun_RefusesOverwrite(t *testing.T) {
	h, err := Open(t.TempDir())
	require.NoError(t, err)

	original := testRecord("2026-02-04-aaa", "2026-02-04T09:00:00+00:00")
	original.Notes = "original"
	_, err = h.WriteRun(original)
	require.NoError(t, err)

	altered := original
	altered.Notes = "tampered"
	_, err = h.WriteRun(altered)
	require.ErrorIs(t, err, ErrRecordExists)

	back, err := h.ReadRun(original.RunID)
	require.NoError(t, err)
	assert.Equal(t, "original", back.Notes, "stored record must be untouched")
}

func TestWriteRun_ValidationError(t *testing.T) {
	h, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = h.WriteRun(model.RunRecord{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Issues)
	assert.Equal(t, 0, h.RunCount())
}

func TestReadRun_MissingIsNilNil(t *testing.T) {
	h, err := Open(t.TempDir())
	require.NoError(t, err)

	r, err := h.ReadRun("nope")
	assert.NoError(t, err)
	assert.Nil(t, r)
}

func TestListRuns_OrderAndLimit(t *testing.T) {
	h, err := Open(t.TempDir())
	require.NoError(t, err)

	ids := []string{"2026-02-04-aaa", "2026-02-05-bbb", "2026-02-06-ccc"}
	for _, id := range ids {
		_, err := h.WriteRun(testRecord(id, "2026-02-04T09:00:00+00:00"))
		require.NoError(t, err)
	}

	newest, err := h.ListRuns(2, true)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, "2026-02-06-ccc", newest[0].RunID)
	assert.Equal(t, "2026-02-05-bbb", newest[1].RunID)

	all, err := h.ListRuns(0, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2026-02-04-aaa", all[0].RunID)
}

func TestListRuns_SkipsCorruptedFiles(t *testing.T) {
	h, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = h.WriteRun(testRecord("2026-02-04-aaa", "2026-02-04T09:00:00+00:00"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(h.RunsDir, "2026-02-05-bad.json"), []byte("{broken"), 0644))

	runs, err := h.ListRuns(0, true)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "2026-02-04-aaa", runs[0].RunID)
}

func TestParameters_LatestByVersionOrder(t *testing.T) {
	h, err := Open(t.TempDir())
	require.NoError(t, err)

	latest, err := h.LatestParameters()
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = h.WriteParameters("v0.1.0", map[string]any{"version": "v0.1.0"})
	require.NoError(t, err)
	_, err = h.WriteParameters("v0.2.0", map[string]any{"version": "v0.2.0"})
	require.NoError(t, err)
	_, err = h.WriteParameters("v0.1.5", map[string]any{"version": "v0.1.5"})
	require.NoError(t, err)

	latest, err = h.LatestParameters()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "v0.2.0", latest["version"])

	versions, err := h.ParameterVersions()
	require.NoError(t, err)
	assert.Equal(t, []string{"v0.1.0", "v0.1.5", "v0.2.0"}, versions)
}

func TestProposals_WriteListRead(t *testing.T) {
	h, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = h.WriteProposal("prop-20260204-090000-aaaa", map[string]any{"status": "pending"})
	require.NoError(t, err)
	_, err = h.WriteProposal("prop-20260205-090000-bbbb", map[string]any{"status": "approved"})
	require.NoError(t, err)

	ids, err := h.ListProposals()
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, "prop-20260205-090000-bbbb", ids[0], "newest first")

	doc, err := h.ReadProposal("prop-20260204-090000-aaaa")
	require.NoError(t, err)
	assert.Equal(t, "pending", doc["status"])

	missing, err := h.ReadProposal("prop-none")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAnalyses_RoundTrip(t *testing.T) {
	h, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = h.WriteAnalysis("analysis-20260204-090000", "# Report A")
	require.NoError(t, err)
	_, err = h.WriteAnalysis("analysis-20260205-090000.md", "# Report B")
	require.NoError(t, err)

	names, err := h.ListAnalyses()
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "analysis-20260205-090000.md", names[0])

	content, err := h.ReadAnalysis("analysis-20260204-090000")
	require.NoError(t, err)
	assert.Equal(t, "# Report A", content)
}
