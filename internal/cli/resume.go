package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/thruflo/hsfit/internal/dataset"
	"github.com/thruflo/hsfit/internal/logging"
	"github.com/thruflo/hsfit/internal/refine"
	"github.com/thruflo/hsfit/internal/state"
)

var resumeIterations int

var resumeCmd = &cobra.Command{
	Use:   "resume <run-id>",
	Short: "Continue refining a stored run",
	Long: `Continues a previous run from where it stopped.

The basis is rebuilt by replaying the boxes recorded in the run's history on
the run's configuration, the points file is loaded again and the fit is
recomputed before refinement continues. New steps are appended to the
history. A unique prefix of the run ID is accepted.

Example:
  hsfit resume 5f0c1d2e
  hsfit resume 5f0c1d2e --iterations 5`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().IntVarP(&resumeIterations, "iterations", "n", 0, "maximum further refinement steps (default from the run's config)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	run, err := resumeRun(ctx, state.NewStore(cwd), args[0], resumeIterations)
	if err != nil {
		return err
	}
	if run.Status == state.RunStatusFailed {
		return fmt.Errorf("run %s failed: %s", run.ShortID(), run.Error)
	}
	return nil
}

// resumeRun continues the stored run matching id for up to iterations more
// steps, or the run's configured budget when iterations is not positive.
func resumeRun(ctx context.Context, store *state.Store, id string, iterations int) (*state.Run, error) {
	run, err := store.FindRun(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	if run.State == refine.StateToleranceReached.String() || run.State == refine.StateExhausted.String() {
		fmt.Printf("Run %s already finished (%s); refining further anyway\n", run.ShortID(), run.State)
	}

	history, err := store.LoadHistory(run.ID)
	if err != nil {
		return nil, err
	}

	cfg := run.Config
	if err := configureLogging(&cfg); err != nil {
		return nil, err
	}
	if iterations > 0 {
		cfg.Refinement.MaxIterations = iterations
	}

	cloud, err := dataset.Load(run.PointsFile, run.Dims)
	if err != nil {
		return nil, err
	}

	log := logging.With("run", run.ShortID())
	eng, err := newEngine(&cfg, cloud, log)
	if err != nil {
		return nil, err
	}
	if err := eng.replay(history); err != nil {
		return nil, err
	}
	log.Info("resuming", "steps", len(history), "max_level", eng.basis.MaxLevel())

	run.Status = state.RunStatusRunning
	if err := store.UpdateRun(run.ID, func(r *state.Run) { r.Status = state.RunStatusRunning }); err != nil {
		return nil, err
	}

	result, more := eng.iterate(ctx, cfg.Refinement, len(history))
	if err := store.SaveHistory(run.ID, append(history, more...)); err != nil {
		return nil, err
	}

	eng.finish(run, result)
	if err := store.UpdateRun(run.ID, func(r *state.Run) { *r = *run }); err != nil {
		return nil, err
	}

	eng.printSummary(run, result, log)
	return run, nil
}
