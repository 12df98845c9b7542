package refine

import (
	"context"
	"fmt"

	"github.com/thruflo/hsfit/internal/grid"
)

// DriverState is the state of one IterativeRefine invocation.
type DriverState int

const (
	StateUnbootstrapped   DriverState = iota // No fit computed yet
	StateRefining                            // Fitted and still refining
	StateToleranceReached                    // Max error within tolerance
	StateExhausted                           // A step made no progress
)

// String returns a human-readable description of the state.
func (s DriverState) String() string {
	switch s {
	case StateUnbootstrapped:
		return "unbootstrapped"
	case StateRefining:
		return "refining"
	case StateToleranceReached:
		return "tolerance reached"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a driver invocation.
func (s DriverState) Terminal() bool {
	return s == StateToleranceReached || s == StateExhausted
}

// Record describes the fit after one step.
type Record struct {
	Step      int        `json:"step"`
	Outcome   string     `json:"outcome"`
	Threshold float64    `json:"threshold"`
	Boxes     []grid.Box `json:"boxes,omitempty"`
	MaxLevel  int        `json:"max_level"`
	MaxError  float64    `json:"max_error"`
	MinError  float64    `json:"min_error"`
}

// Result contains the outcome of a driver invocation.
type Result struct {
	State       DriverState
	Steps       int // NextIteration calls made
	Refinements int // Steps that applied boxes and refitted
	Trace       []Record
	Error       error
}

// IterativeRefine bootstraps the fit when no point errors exist yet, then
// runs up to iterations steps. It stops early when the max error is within
// tolerance or a step makes no progress; running out of iterations leaves the
// result in StateRefining so the caller may continue with another call. A
// negative threshold derives the cutoff from the refinement percentage on
// every step. ctx is checked between steps only.
func (r *Refiner) IterativeRefine(ctx context.Context, iterations int, tolerance, threshold float64) Result {
	result := Result{State: StateUnbootstrapped}

	if len(r.session.PointErrors()) == 0 {
		if err := r.refit(); err != nil {
			result.Error = fmt.Errorf("initial fit failed: %w", err)
			return result
		}
		r.log.Debug("initial fit", "max_error", r.session.MaxError(), "min_error", r.session.MinError())
	}
	result.State = StateRefining

	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			result.Error = err
			return result
		}

		report, err := r.step(tolerance, threshold)
		result.Steps++
		if err != nil {
			result.Error = err
			return result
		}
		if report.Outcome.Progressed() {
			result.Refinements++
		}
		result.Trace = append(result.Trace, r.record(result.Steps, report))

		if r.session.MaxError() <= tolerance {
			result.State = StateToleranceReached
			return result
		}
		if !report.Outcome.Progressed() {
			r.log.Debug("no more boxes", "step", result.Steps, "max_error", r.session.MaxError())
			result.State = StateExhausted
			return result
		}
	}
	return result
}

// Refine runs IterativeRefine with the configured iteration budget, tolerance
// and error threshold.
func (r *Refiner) Refine(ctx context.Context) Result {
	return r.IterativeRefine(ctx, r.cfg.MaxIterations, r.cfg.Tolerance, r.cfg.ErrorThreshold)
}

func (r *Refiner) record(step int, report StepReport) Record {
	return Record{
		Step:      step,
		Outcome:   report.Outcome.String(),
		Threshold: report.Threshold,
		Boxes:     report.Boxes,
		MaxLevel:  r.basis.MaxLevel(),
		MaxError:  r.session.MaxError(),
		MinError:  r.session.MinError(),
	}
}
