package cli

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/hsfit/internal/state"
	"github.com/thruflo/hsfit/internal/testutil"
)

func TestResumeRun(t *testing.T) {
	tmpDir, store := testutil.SetupTestDir(t)
	pointsFile := writeRidge(t, tmpDir)

	var first *state.Run
	captureOutput(func() {
		var err error
		first, err = fitRun(context.Background(), store, ridgeConfig(2), pointsFile)
		require.NoError(t, err)
	})
	before, err := store.LoadHistory(first.ID)
	require.NoError(t, err)
	require.Len(t, before, 2)

	var resumed *state.Run
	captureOutput(func() {
		// A prefix of the ID is enough
		resumed, err = resumeRun(context.Background(), store, first.ShortID(), 2)
		require.NoError(t, err)
	})

	assert.Equal(t, first.ID, resumed.ID)
	assert.Equal(t, state.RunStatusCompleted, resumed.Status)
	assert.Equal(t, 4, resumed.Steps)
	assert.GreaterOrEqual(t, resumed.MaxLevel, first.MaxLevel)

	history, err := store.LoadHistory(first.ID)
	require.NoError(t, err)
	testutil.AssertHistoryLength(t, history, 4)
	assert.Equal(t, before, history[:2], "earlier history is kept")
	for i, h := range history {
		assert.Equal(t, i+1, h.Step)
	}

	// Replay rebuilds the basis the first invocation ended with, so the
	// first resumed step starts at or above the last recorded level
	assert.GreaterOrEqual(t, history[2].MaxLevel, history[1].MaxLevel)

	stored, err := store.GetRun(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Steps)
}

func TestResumeRun_AlreadyFinished(t *testing.T) {
	tmpDir, store := testutil.SetupTestDir(t)
	pointsFile := writeRidge(t, tmpDir)

	cfg := ridgeConfig(3)
	cfg.Refinement.Tolerance = 10

	var run *state.Run
	captureOutput(func() {
		var err error
		run, err = fitRun(context.Background(), store, cfg, pointsFile)
		require.NoError(t, err)
	})

	output := captureOutput(func() {
		_, err := resumeRun(context.Background(), store, run.ID, 0)
		require.NoError(t, err)
	})
	assert.Contains(t, output, "already finished")
}

func TestResumeRun_Errors(t *testing.T) {
	tmpDir, store := testutil.SetupTestDir(t)

	t.Run("unknown run", func(t *testing.T) {
		_, err := resumeRun(context.Background(), store, "00000000", 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load run")
	})

	t.Run("points file removed", func(t *testing.T) {
		pointsFile := writeRidge(t, tmpDir)
		var run *state.Run
		captureOutput(func() {
			var err error
			run, err = fitRun(context.Background(), store, ridgeConfig(1), pointsFile)
			require.NoError(t, err)
		})
		require.NoError(t, os.Remove(pointsFile))

		_, err := resumeRun(context.Background(), store, run.ID, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open points file")
	})
}
