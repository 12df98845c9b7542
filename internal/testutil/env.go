package testutil

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thruflo/hsfit/internal/config"
	"github.com/thruflo/hsfit/internal/state"
)

// SetupTestDir creates a temporary directory with the .hsfit directory
// structure and a default config.yaml. Returns the temp directory path and a
// Store. The directory is automatically cleaned up when the test completes.
func SetupTestDir(t *testing.T) (string, *state.Store) {
	t.Helper()

	tmpDir := t.TempDir()
	store := state.NewStore(tmpDir)
	require.NoError(t, os.MkdirAll(store.RunsDir(), 0o755))

	cfg := config.DefaultConfig()
	require.NoError(t, config.SaveConfig(tmpDir, &cfg))

	return tmpDir, store
}

// MustMarshalJSON marshals v to JSON or fails the test.
func MustMarshalJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// MustUnmarshalJSON unmarshals JSON into v or fails the test.
func MustUnmarshalJSON(t *testing.T, data []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, v))
}

// WriteTestFile writes content to basePath/relativePath, creating parent
// directories as needed.
func WriteTestFile(t *testing.T, basePath, relativePath string, content []byte) {
	t.Helper()
	path := filepath.Join(basePath, relativePath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

// WritePointsCSV writes one row per point, parameters first, to
// basePath/name and returns the file path.
func WritePointsCSV(t *testing.T, basePath, name string, params, points [][]float64) string {
	t.Helper()
	require.Len(t, points, len(params))

	path := filepath.Join(basePath, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	for i := range params {
		var row []string
		for _, v := range params[i] {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		for _, v := range points[i] {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		require.NoError(t, w.Write(row))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return path
}
