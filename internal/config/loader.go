package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thruflo/hsfit/internal/logging"
)

// Directory and file names under the project root.
const (
	DirName    = ".hsfit"
	ConfigFile = "config.yaml"
)

// Default values for Config.
const (
	DefaultPercentage     = 0.1
	DefaultExtension      = 1
	DefaultSmoothing      = 0.0
	DefaultTolerance      = 1e-3
	DefaultMaxIterations  = 10
	DefaultErrorThreshold = -1.0
	DefaultIntervals      = 4
	DefaultDims           = 2
	DefaultLogLevel       = "warn"
)

// DefaultRefinement returns refinement settings for a dims-dimensional domain.
func DefaultRefinement(dims int) Refinement {
	ext := make([]int, dims)
	for i := range ext {
		ext[i] = DefaultExtension
	}
	return Refinement{
		Percentage:     DefaultPercentage,
		Extension:      ext,
		Smoothing:      DefaultSmoothing,
		Tolerance:      DefaultTolerance,
		MaxIterations:  DefaultMaxIterations,
		ErrorThreshold: DefaultErrorThreshold,
	}
}

// DefaultBasis returns a unit-cube basis with DefaultIntervals cells per
// dimension.
func DefaultBasis(dims int) Basis {
	b := Basis{
		Intervals: make([]int, dims),
		Lower:     make([]float64, dims),
		Upper:     make([]float64, dims),
	}
	for i := 0; i < dims; i++ {
		b.Intervals[i] = DefaultIntervals
		b.Upper[i] = 1
	}
	return b
}

// DefaultConfig returns a Config with sensible default values for a
// DefaultDims-dimensional domain.
func DefaultConfig() Config {
	return DefaultConfigFor(DefaultDims)
}

// DefaultConfigFor returns defaults sized for a dims-dimensional domain.
func DefaultConfigFor(dims int) Config {
	return Config{
		Refinement: DefaultRefinement(dims),
		Basis:      DefaultBasis(dims),
		Logging:    Logging{Level: DefaultLogLevel},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Path returns the config file path under basePath.
func Path(basePath string) string {
	return filepath.Join(basePath, DirName, ConfigFile)
}

// LoadConfig reads and parses .hsfit/config.yaml from the given base path.
// If the file doesn't exist, returns default config. Fields missing from the
// file keep their defaults.
func LoadConfig(basePath string) (*Config, error) {
	data, err := os.ReadFile(Path(basePath))
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig decodes YAML over the defaults and validates the result. When
// the YAML sets only the basis intervals, the per-dimension defaults are
// resized to match.
func ParseConfig(data []byte) (*Config, error) {
	var probe Config
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	dims := DefaultDims
	if n := len(probe.Basis.Intervals); n > 0 {
		dims = n
	}
	cfg := DefaultConfigFor(dims)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes cfg to .hsfit/config.yaml under basePath.
func SaveConfig(basePath string, cfg *Config) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(basePath, DirName), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(basePath), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ValidateConfig checks that all config values are valid.
func ValidateConfig(cfg *Config) error {
	if err := ValidateBasis(&cfg.Basis); err != nil {
		return err
	}
	if err := ValidateRefinement(&cfg.Refinement, cfg.Dims()); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return ValidationError{Field: "logging.level", Message: err.Error()}
	}
	return nil
}

// ValidateRefinement checks refinement settings for a dims-dimensional
// domain.
func ValidateRefinement(r *Refinement, dims int) error {
	if err := ValidatePercentage(r.Percentage); err != nil {
		return err
	}
	if err := ValidateExtension(r.Extension, dims); err != nil {
		return err
	}
	if r.Smoothing < 0 {
		return ValidationError{Field: "refinement.smoothing", Message: "must be non-negative"}
	}
	if r.Tolerance < 0 {
		return ValidationError{Field: "refinement.tolerance", Message: "must be non-negative"}
	}
	if r.MaxIterations <= 0 {
		return ValidationError{Field: "refinement.max_iterations", Message: "must be positive"}
	}
	return nil
}

// ValidatePercentage checks a refinement percentage lies in [0, 1].
func ValidatePercentage(p float64) error {
	if !(p >= 0 && p <= 1) {
		return ValidationError{Field: "refinement.percentage", Message: "must be between 0 and 1"}
	}
	return nil
}

// ValidateExtension checks an extension has one non-negative entry per
// dimension.
func ValidateExtension(ext []int, dims int) error {
	if len(ext) != dims {
		return ValidationError{
			Field:   "refinement.extension",
			Message: fmt.Sprintf("has %d entries, want %d", len(ext), dims),
		}
	}
	for i, e := range ext {
		if e < 0 {
			return ValidationError{
				Field:   "refinement.extension",
				Message: fmt.Sprintf("entry %d is negative", i),
			}
		}
	}
	return nil
}

// ValidateBasis checks the level-0 grid description.
func ValidateBasis(b *Basis) error {
	d := len(b.Intervals)
	if d == 0 {
		return ValidationError{Field: "basis.intervals", Message: "required field is empty"}
	}
	if len(b.Lower) != d || len(b.Upper) != d {
		return ValidationError{Field: "basis", Message: "intervals, lower and upper must have equal length"}
	}
	for i := 0; i < d; i++ {
		if b.Intervals[i] <= 0 {
			return ValidationError{Field: "basis.intervals", Message: "must be positive"}
		}
		if !(b.Upper[i] > b.Lower[i]) {
			return ValidationError{
				Field:   "basis.upper",
				Message: fmt.Sprintf("must exceed lower bound in dimension %d", i),
			}
		}
	}
	return nil
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
