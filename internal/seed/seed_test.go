package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsplane/observer/internal/hub"
)

func TestApply_WritesThenSkips(t *testing.T) {
	h, err := hub.Open(t.TempDir())
	require.NoError(t, err)

	res, err := Apply(h)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Written)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 5, res.Total)

	// Second apply must not touch the immutable records.
	res, err = Apply(h)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Written)
	assert.Equal(t, 5, res.Skipped)
	assert.Equal(t, 5, res.Total)
}

func TestRecords_AreValid(t *testing.T) {
	h, err := hub.Open(t.TempDir())
	require.NoError(t, err)

	for _, r := range Records() {
		_, err := h.WriteRun(r)
		require.NoError(t, err, "seed record %s must pass validation", r.RunID)
	}

	back, err := h.ReadRun("2026-02-04-seed02")
	require.NoError(t, err)
	require.NotNil(t, back)
	assert.True(t, back.ManualIntervention)
	assert.Equal(t, "PRD ambiguity on TOTP vs SMS fallback", back.ManualInterventionReason)
}
