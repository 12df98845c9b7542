package refine

import (
	"errors"
	"fmt"

	"github.com/thruflo/hsfit/internal/config"
	"github.com/thruflo/hsfit/internal/grid"
	"github.com/thruflo/hsfit/internal/logging"
)

// DeriveThreshold is the explicit-threshold sentinel meaning "derive the
// cutoff from the refinement percentage". Any negative threshold behaves the
// same way.
const DeriveThreshold = -1.0

// ErrNotFitted is the panic value of NextIteration when no fit has been
// computed yet.
var ErrNotFitted = errors.New("refine: no point errors; compute an initial fit before stepping")

// Session is the fitting engine as seen by the refinement loop.
type Session interface {
	// Compute refits the coefficients on the current basis.
	Compute(lambda float64) error
	// ComputeErrors refreshes the point errors and their stats.
	ComputeErrors() error
	// PointErrors returns the errors of the latest fit, index-aligned with
	// Parameters; empty before the first fit.
	PointErrors() []float64
	MaxError() float64
	MinError() float64
	// Parameters returns the parameter value of every point.
	Parameters() [][]float64
}

// HierarchicalBasis is the multilevel basis capability the refinement loop
// needs.
type HierarchicalBasis interface {
	Dim() int
	MaxLevel() int
	// Breakpoints returns the breakpoints along dim at level.
	Breakpoints(level, dim int) []float64
	// NumBreaks returns the number of breakpoints along dim at level.
	NumBreaks(level, dim int) int
	// QueryCoarsestActiveLevel returns the coarsest level active over the
	// cell range [lower, upper) given at level, without modifying the basis.
	QueryCoarsestActiveLevel(lower, upper []int, level int) int
	// RefineElements activates each box at its level.
	RefineElements(boxes []grid.Box) error
}

// StepOutcome reports what one iteration did.
type StepOutcome int

const (
	StepProgressed StepOutcome = iota // Boxes applied and the fit recomputed
	StepConverged                     // Max error already within tolerance
	StepExhausted                     // No boxes left to insert
)

// String returns a human-readable description of the outcome.
func (o StepOutcome) String() string {
	switch o {
	case StepProgressed:
		return "progressed"
	case StepConverged:
		return "tolerance reached"
	case StepExhausted:
		return "no boxes"
	default:
		return "unknown"
	}
}

// Progressed reports whether the step changed the basis and refitted.
func (o StepOutcome) Progressed() bool {
	return o == StepProgressed
}

// StepReport describes one call of NextIteration.
type StepReport struct {
	Outcome   StepOutcome
	Threshold float64
	Boxes     []grid.Box
}

// Refiner runs adaptive refinement for one fitting session. It is owned by a
// single goroutine.
type Refiner struct {
	session Session
	basis   HierarchicalBasis
	cfg     config.Refinement
	log     *logging.Logger
}

// Options holds the collaborators and settings of a Refiner.
type Options struct {
	Session    Session
	Basis      HierarchicalBasis
	Refinement config.Refinement
	Logger     *logging.Logger // Optional: defaults to the package logger
}

// New creates a Refiner over session and basis. The refinement settings are
// validated against the basis dimension.
func New(session Session, basis HierarchicalBasis, cfg config.Refinement) (*Refiner, error) {
	return NewWithOptions(Options{
		Session:    session,
		Basis:      basis,
		Refinement: cfg,
	})
}

// NewWithOptions creates a Refiner from explicit options.
func NewWithOptions(opts Options) (*Refiner, error) {
	if opts.Session == nil {
		return nil, fmt.Errorf("refiner requires a fitting session")
	}
	if opts.Basis == nil {
		return nil, fmt.Errorf("refiner requires a hierarchical basis")
	}
	if err := config.ValidateRefinement(&opts.Refinement, opts.Basis.Dim()); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	cfg := opts.Refinement
	cfg.Extension = append([]int(nil), cfg.Extension...)
	return &Refiner{
		session: opts.Session,
		basis:   opts.Basis,
		cfg:     cfg,
		log:     logger,
	}, nil
}

// RefPercentage returns the fraction of points refined per pass.
func (r *Refiner) RefPercentage() float64 {
	return r.cfg.Percentage
}

// SetRefPercentage changes the refinement percentage; p must lie in [0, 1].
func (r *Refiner) SetRefPercentage(p float64) error {
	if err := config.ValidatePercentage(p); err != nil {
		return err
	}
	r.cfg.Percentage = p
	return nil
}

// Extension returns a copy of the per-dimension cell extension.
func (r *Refiner) Extension() []int {
	return append([]int(nil), r.cfg.Extension...)
}

// SetExtension changes the cell extension; it needs one non-negative entry
// per basis dimension.
func (r *Refiner) SetExtension(ext []int) error {
	if err := config.ValidateExtension(ext, r.basis.Dim()); err != nil {
		return err
	}
	r.cfg.Extension = append([]int(nil), ext...)
	return nil
}

// Smoothing returns the smoothing parameter passed to every refit.
func (r *Refiner) Smoothing() float64 {
	return r.cfg.Smoothing
}

// Boxes returns the refinement boxes for errors at threshold without applying
// them. errors[i] belongs to the session's i-th parameter.
func (r *Refiner) Boxes(errors []float64, threshold float64) []grid.Box {
	return NewMarker(r.basis, r.session.Parameters(), r.cfg.Extension).Boxes(errors, threshold)
}

// Threshold resolves the cutoff for a pass: explicit when non-negative,
// otherwise selected from the current errors by the refinement percentage.
func (r *Refiner) Threshold(explicit float64) float64 {
	if explicit >= 0 {
		return explicit
	}
	return SelectThreshold(r.session.PointErrors(), r.cfg.Percentage)
}

// NextIteration performs one refine-then-refit cycle and reports whether it
// made progress. Reaching the tolerance and running out of boxes are normal
// outcomes, not errors. It panics with ErrNotFitted when called before any
// fit has produced point errors.
func (r *Refiner) NextIteration(tolerance, threshold float64) (StepOutcome, error) {
	report, err := r.step(tolerance, threshold)
	return report.Outcome, err
}

func (r *Refiner) step(tolerance, explicit float64) (StepReport, error) {
	errs := r.session.PointErrors()
	if len(errs) == 0 {
		panic(ErrNotFitted)
	}

	if r.session.MaxError() <= tolerance {
		r.log.Debug("tolerance reached", "max_error", r.session.MaxError(), "tolerance", tolerance)
		return StepReport{Outcome: StepConverged}, nil
	}

	threshold := r.Threshold(explicit)
	boxes := r.Boxes(errs, threshold)
	if len(boxes) == 0 {
		return StepReport{Outcome: StepExhausted, Threshold: threshold}, nil
	}

	if err := r.basis.RefineElements(boxes); err != nil {
		return StepReport{Outcome: StepExhausted, Threshold: threshold, Boxes: boxes},
			fmt.Errorf("failed to refine basis: %w", err)
	}
	r.log.Debug("inserted boxes", "boxes", len(boxes), "threshold", threshold, "max_level", r.basis.MaxLevel())

	if err := r.refit(); err != nil {
		return StepReport{Outcome: StepExhausted, Threshold: threshold, Boxes: boxes}, err
	}
	return StepReport{Outcome: StepProgressed, Threshold: threshold, Boxes: boxes}, nil
}

func (r *Refiner) refit() error {
	if err := r.session.Compute(r.cfg.Smoothing); err != nil {
		return fmt.Errorf("failed to compute fit: %w", err)
	}
	if err := r.session.ComputeErrors(); err != nil {
		return fmt.Errorf("failed to compute point errors: %w", err)
	}
	return nil
}
