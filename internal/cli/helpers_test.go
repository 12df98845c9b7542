package cli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thruflo/hsfit/internal/config"
	"github.com/thruflo/hsfit/internal/testutil"
)

func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, "directory should exist: %s", path)
	assert.True(t, info.IsDir(), "path should be a directory: %s", path)
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, "file should exist: %s", path)
	assert.False(t, info.IsDir(), "path should be a file: %s", path)
}

// ridgeConfig returns a one-dimensional config that will not reach its
// tolerance within iterations steps on the ridge cloud.
func ridgeConfig(iterations int) *config.Config {
	cfg := config.DefaultConfigFor(1)
	cfg.Refinement.MaxIterations = iterations
	cfg.Refinement.Tolerance = 1e-9
	return &cfg
}

// writeRidge writes the ridge cloud to dir and returns its path.
func writeRidge(t *testing.T, dir string) string {
	t.Helper()
	params, points := testutil.SampleCloud1D(129, testutil.Ridge)
	return testutil.WritePointsCSV(t, dir, "ridge.csv", params, points)
}
