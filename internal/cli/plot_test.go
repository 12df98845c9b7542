package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/hsfit/internal/state"
	"github.com/thruflo/hsfit/internal/testutil"
)

func TestPlotRun(t *testing.T) {
	tmpDir, store := testutil.SetupTestDir(t)

	run := &state.Run{Dims: 1, Status: state.RunStatusCompleted}
	require.NoError(t, store.CreateRun(run))
	require.NoError(t, store.SaveHistory(run.ID, testutil.SampleHistory()))

	t.Run("default path", func(t *testing.T) {
		output := captureOutput(func() {
			require.NoError(t, plotRun(store, run.ShortID(), ""))
		})
		assert.Contains(t, output, "Wrote convergence plot")
		assertFileExists(t, filepath.Join(store.RunsDir(), run.ID, "convergence.png"))
	})

	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(tmpDir, "plots", "run.svg")
		captureOutput(func() {
			require.NoError(t, plotRun(store, run.ID, path))
		})
		assertFileExists(t, path)
	})
}

func TestPlotRun_Errors(t *testing.T) {
	_, store := testutil.SetupTestDir(t)

	err := plotRun(store, "missing", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get run")

	// A run without history has nothing to draw
	run := &state.Run{Dims: 1}
	require.NoError(t, store.CreateRun(run))
	assert.Error(t, plotRun(store, run.ID, ""))
}

func TestFitRun_WritesPlot(t *testing.T) {
	tmpDir, store := testutil.SetupTestDir(t)
	pointsFile := writeRidge(t, tmpDir)
	path := filepath.Join(tmpDir, "fit.png")

	captureOutput(func() {
		run, err := fitRun(context.Background(), store, ridgeConfig(2), pointsFile)
		require.NoError(t, err)
		require.NoError(t, savePlot(store, run, path))
	})

	assertFileExists(t, path)
}
