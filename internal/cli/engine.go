package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/thruflo/hsfit/internal/config"
	"github.com/thruflo/hsfit/internal/dataset"
	"github.com/thruflo/hsfit/internal/fitting"
	"github.com/thruflo/hsfit/internal/hbasis"
	"github.com/thruflo/hsfit/internal/logging"
	"github.com/thruflo/hsfit/internal/refine"
	"github.com/thruflo/hsfit/internal/state"
)

// stallWindow is the number of trailing steps checked for a stalled max error.
const stallWindow = 3

// engine bundles the collaborators of one fit.
type engine struct {
	basis   *hbasis.Basis
	session *fitting.Session
	refiner *refine.Refiner
}

func newEngine(cfg *config.Config, cloud *dataset.Cloud, log *logging.Logger) (*engine, error) {
	basis, err := hbasis.New(cfg.Basis.Intervals, cfg.Basis.Lower, cfg.Basis.Upper)
	if err != nil {
		return nil, fmt.Errorf("failed to create basis: %w", err)
	}

	session, err := fitting.NewSession(cloud.Params, cloud.Points, basis)
	if err != nil {
		return nil, fmt.Errorf("failed to create fitting session: %w", err)
	}

	refiner, err := refine.NewWithOptions(refine.Options{
		Session:    session,
		Basis:      basis,
		Refinement: cfg.Refinement,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	return &engine{basis: basis, session: session, refiner: refiner}, nil
}

// replay re-applies the boxes of a stored history so the basis matches the
// end of the run.
func (e *engine) replay(history []state.History) error {
	for _, h := range history {
		if len(h.Boxes) == 0 {
			continue
		}
		if err := e.basis.RefineElements(h.Boxes); err != nil {
			return fmt.Errorf("failed to replay step %d: %w", h.Step, err)
		}
	}
	return nil
}

// iterate runs the driver and converts its trace into history entries
// numbered after offset.
func (e *engine) iterate(ctx context.Context, r config.Refinement, offset int) (refine.Result, []state.History) {
	result := e.refiner.IterativeRefine(ctx, r.MaxIterations, r.Tolerance, r.ErrorThreshold)

	history := make([]state.History, 0, len(result.Trace))
	for _, rec := range result.Trace {
		history = append(history, state.History{
			Step:      offset + rec.Step,
			Outcome:   rec.Outcome,
			Threshold: rec.Threshold,
			Boxes:     rec.Boxes,
			MaxLevel:  rec.MaxLevel,
			MaxError:  rec.MaxError,
			MinError:  rec.MinError,
		})
	}
	return result, history
}

// finish records the outcome of a driver invocation on run.
func (e *engine) finish(run *state.Run, result refine.Result) {
	run.FinishedAt = time.Now().UTC()
	run.State = result.State.String()
	run.Steps += result.Steps
	run.MaxLevel = e.basis.MaxLevel()
	run.MaxError = e.session.MaxError()
	run.Status = state.RunStatusCompleted
	run.Error = ""
	if result.Error != nil {
		run.Status = state.RunStatusFailed
		run.Error = result.Error.Error()
	}
}

// printSummary prints the outcome of a driver invocation and warns when the
// trace shows a stall.
func (e *engine) printSummary(run *state.Run, result refine.Result, log *logging.Logger) {
	tolerance := run.Config.Refinement.Tolerance
	fmt.Printf("Run %s: %s after %d steps (%d refinements)\n", run.ShortID(), run.State, result.Steps, result.Refinements)
	printField("Max error", formatError(run.MaxError))
	printField("Max level", fmt.Sprintf("%d", run.MaxLevel))
	printField("Below tol", fmt.Sprintf("%d/%d points under %s", e.session.NumPointsBelow(tolerance), run.Points,
		formatError(tolerance)))
	if run.Error != "" {
		printField("Error", run.Error)
	}

	if refine.DetectStall(result.Trace, stallWindow) {
		log.Warn("max error stalled", "window", stallWindow, "rate", refine.ReductionRate(result.Trace, stallWindow))
		fmt.Printf("Warning: max error has not decreased over the last %d steps\n", stallWindow)
	}
}

func formatError(e float64) string {
	return fmt.Sprintf("%.4g", e)
}
