package state

import (
	"time"

	"github.com/thruflo/hsfit/internal/config"
	"github.com/thruflo/hsfit/internal/grid"
)

// Run represents one fitting run in run.yaml.
type Run struct {
	ID         string        `yaml:"id"`
	PointsFile string        `yaml:"points_file"`
	Dims       int           `yaml:"dims"`
	Points     int           `yaml:"points"`
	StartedAt  time.Time     `yaml:"started_at"`
	FinishedAt time.Time     `yaml:"finished_at,omitempty"`
	Status     string        `yaml:"status"`
	State      string        `yaml:"state,omitempty"` // Final driver state
	Steps      int           `yaml:"steps"`
	MaxLevel   int           `yaml:"max_level"`
	MaxError   float64       `yaml:"max_error"`
	Error      string        `yaml:"error,omitempty"`
	Config     config.Config `yaml:"config"`
}

// ShortID returns the first eight characters of the run ID.
func (r *Run) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}
	return r.ID[:8]
}

// History represents a single refinement step in history.json.
type History struct {
	Step      int        `json:"step"`
	Outcome   string     `json:"outcome"`
	Threshold float64    `json:"threshold"`
	Boxes     []grid.Box `json:"boxes,omitempty"`
	MaxLevel  int        `json:"max_level"`
	MaxError  float64    `json:"max_error"`
	MinError  float64    `json:"min_error"`
}

// Status values for Run.Status field.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
