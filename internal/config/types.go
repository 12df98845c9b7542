package config

// Refinement holds the knobs of the adaptive refinement loop.
type Refinement struct {
	// Percentage is the fraction of points, by error rank, marked per pass
	// when no explicit error threshold is given.
	Percentage float64 `yaml:"percentage"`
	// Extension is the per-dimension margin, in cells, grown around every
	// marked cell.
	Extension []int `yaml:"extension"`
	// Smoothing is the lambda passed to the least-squares solve.
	Smoothing     float64 `yaml:"smoothing"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
	// ErrorThreshold marks every point with at least this error. A negative
	// value derives the threshold from Percentage; 0 refines globally.
	ErrorThreshold float64 `yaml:"error_threshold"`
}

// Basis describes the level-0 grid of the hierarchical basis.
type Basis struct {
	Intervals []int     `yaml:"intervals"`
	Lower     []float64 `yaml:"lower"`
	Upper     []float64 `yaml:"upper"`
}

// Logging configures the ambient logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Config represents the .hsfit/config.yaml file.
type Config struct {
	Refinement Refinement `yaml:"refinement"`
	Basis      Basis      `yaml:"basis"`
	Logging    Logging    `yaml:"logging"`
}

// Dims returns the parametric dimension the basis section describes.
func (c *Config) Dims() int {
	return len(c.Basis.Intervals)
}
