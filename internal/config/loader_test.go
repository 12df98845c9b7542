package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, DirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0o644))
	return tmpDir
}

func TestLoadConfig_Default(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultPercentage, cfg.Refinement.Percentage)
	assert.Equal(t, []int{DefaultExtension, DefaultExtension}, cfg.Refinement.Extension)
	assert.Equal(t, DefaultTolerance, cfg.Refinement.Tolerance)
	assert.Equal(t, DefaultMaxIterations, cfg.Refinement.MaxIterations)
	assert.Equal(t, DefaultErrorThreshold, cfg.Refinement.ErrorThreshold)
	assert.Equal(t, []int{DefaultIntervals, DefaultIntervals}, cfg.Basis.Intervals)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultDims, cfg.Dims())
}

func TestLoadConfig_ValidFile(t *testing.T) {
	t.Parallel()

	tmpDir := writeConfig(t, `refinement:
  percentage: 0.25
  extension: [2, 0]
  smoothing: 0.5
  tolerance: 0.01
  max_iterations: 7
  error_threshold: 0
basis:
  intervals: [8, 2]
  lower: [-1, 0]
  upper: [1, 3]
logging:
  level: debug
`)

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Refinement.Percentage)
	assert.Equal(t, []int{2, 0}, cfg.Refinement.Extension)
	assert.Equal(t, 0.5, cfg.Refinement.Smoothing)
	assert.Equal(t, 0.01, cfg.Refinement.Tolerance)
	assert.Equal(t, 7, cfg.Refinement.MaxIterations)
	assert.Equal(t, 0.0, cfg.Refinement.ErrorThreshold)
	assert.Equal(t, []int{8, 2}, cfg.Basis.Intervals)
	assert.Equal(t, []float64{-1, 0}, cfg.Basis.Lower)
	assert.Equal(t, []float64{1, 3}, cfg.Basis.Upper)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_PartialFileResizesDefaults(t *testing.T) {
	t.Parallel()

	// Only the basis intervals are given; per-dimension defaults follow them.
	tmpDir := writeConfig(t, `basis:
  intervals: [3, 3, 3]
`)

	cfg, err := LoadConfig(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Dims())
	assert.Equal(t, []int{1, 1, 1}, cfg.Refinement.Extension)
	assert.Equal(t, []float64{0, 0, 0}, cfg.Basis.Lower)
	assert.Equal(t, []float64{1, 1, 1}, cfg.Basis.Upper)
	assert.Equal(t, DefaultMaxIterations, cfg.Refinement.MaxIterations)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	tmpDir := writeConfig(t, `refinement: [`)

	_, err := LoadConfig(tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name: "percentage above one",
			content: `refinement:
  percentage: 1.5
`,
			field: "refinement.percentage",
		},
		{
			name: "negative percentage",
			content: `refinement:
  percentage: -0.1
`,
			field: "refinement.percentage",
		},
		{
			name: "extension length mismatch",
			content: `refinement:
  extension: [1]
`,
			field: "refinement.extension",
		},
		{
			name: "negative extension",
			content: `refinement:
  extension: [1, -2]
`,
			field: "refinement.extension",
		},
		{
			name: "negative smoothing",
			content: `refinement:
  smoothing: -1
`,
			field: "refinement.smoothing",
		},
		{
			name: "negative tolerance",
			content: `refinement:
  tolerance: -0.5
`,
			field: "refinement.tolerance",
		},
		{
			name: "zero max_iterations",
			content: `refinement:
  max_iterations: 0
`,
			field: "refinement.max_iterations",
		},
		{
			name: "zero intervals",
			content: `basis:
  intervals: [0, 4]
`,
			field: "basis.intervals",
		},
		{
			name: "inverted domain",
			content: `basis:
  lower: [0, 1]
  upper: [1, 1]
`,
			field: "basis.upper",
		},
		{
			name: "bounds length mismatch",
			content: `basis:
  lower: [0]
`,
			field: "basis",
		},
		{
			name: "unknown log level",
			content: `logging:
  level: loud
`,
			field: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := writeConfig(t, tt.content)

			_, err := LoadConfig(tmpDir)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	cfg := DefaultConfigFor(1)
	cfg.Refinement.Percentage = 0.3

	require.NoError(t, SaveConfig(tmpDir, &cfg))

	loaded, err := LoadConfig(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)
}

func TestSaveConfig_RejectsInvalid(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Refinement.Percentage = 2

	err := SaveConfig(tmpDir, &cfg)
	assert.True(t, IsValidationError(err))
	assert.NoFileExists(t, Path(tmpDir))
}

func TestValidateExtension(t *testing.T) {
	assert.NoError(t, ValidateExtension([]int{0, 3}, 2))
	assert.Error(t, ValidateExtension(nil, 1))
	assert.Error(t, ValidateExtension([]int{1, 1, 1}, 2))
	assert.Error(t, ValidateExtension([]int{-1}, 1))
}

func TestValidatePercentage(t *testing.T) {
	for _, p := range []float64{0, 0.5, 1} {
		assert.NoError(t, ValidatePercentage(p), "p=%v", p)
	}
	for _, p := range []float64{-1e-9, 1.0000001} {
		assert.Error(t, ValidatePercentage(p), "p=%v", p)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: "refinement.percentage", Message: "must be between 0 and 1"}
	assert.Equal(t, "validation error: refinement.percentage: must be between 0 and 1", err.Error())
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ValidationError{Field: "x", Message: "y"}))
	assert.False(t, IsValidationError(os.ErrNotExist))
	assert.False(t, IsValidationError(nil))
}
