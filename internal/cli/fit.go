package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/thruflo/hsfit/internal/config"
	"github.com/thruflo/hsfit/internal/dataset"
	"github.com/thruflo/hsfit/internal/logging"
	"github.com/thruflo/hsfit/internal/report"
	"github.com/thruflo/hsfit/internal/state"
)

var (
	fitPoints     string
	fitDims       int
	fitIterations int
	fitTolerance  float64
	fitThreshold  float64
	fitPercentage float64
	fitSmoothing  float64
	fitPlot       string
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a point cloud with adaptive refinement",
	Long: `Fits a hierarchical spline to the points in a CSV file and refines it
until the max point error is within tolerance.

Each row of the file holds the parameter values of one point followed by its
coordinates. Settings come from .hsfit/config.yaml; flags override them for
this run. The run and its refinement history are stored under .hsfit/runs/.

Examples:
  hsfit fit --points surface.csv
  hsfit fit --points curve.csv --dims 1 --tolerance 1e-4
  hsfit fit --points surface.csv --threshold 0 --iterations 2   # global refinement`,
	Args: cobra.NoArgs,
	RunE: runFit,
}

func init() {
	addFitFlags(fitCmd)
	_ = fitCmd.MarkFlagRequired("points")
	rootCmd.AddCommand(fitCmd)
}

func addFitFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&fitPoints, "points", "p", "", "CSV file of parameter values and coordinates (required)")
	flags.IntVarP(&fitDims, "dims", "d", 0, "parametric dimension; resets the basis to the default grid when it differs from config.yaml")
	flags.IntVarP(&fitIterations, "iterations", "n", 0, "maximum refinement steps")
	flags.Float64Var(&fitTolerance, "tolerance", 0, "max point error at which refinement stops")
	flags.Float64Var(&fitThreshold, "threshold", 0, "refine every point with at least this error; negative derives it from --percentage")
	flags.Float64Var(&fitPercentage, "percentage", 0, "fraction of worst points refined per step")
	flags.Float64Var(&fitSmoothing, "smoothing", 0, "smoothing weight of the least-squares solve")
	flags.StringVar(&fitPlot, "plot", "", "write a convergence plot to this file")
}

func runFit(cmd *cobra.Command, args []string) error {
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

	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFitFlags(cmd, cfg); err != nil {
		return err
	}
	if err := configureLogging(cfg); err != nil {
		return err
	}

	run, err := fitRun(ctx, state.NewStore(cwd), cfg, fitPoints)
	if err != nil {
		return err
	}

	if fitPlot != "" {
		if err := savePlot(state.NewStore(cwd), run, fitPlot); err != nil {
			return err
		}
	}
	if run.Status == state.RunStatusFailed {
		return fmt.Errorf("run %s failed: %s", run.ShortID(), run.Error)
	}
	return nil
}

// applyFitFlags overrides cfg with the flags set on cmd and validates the
// result.
func applyFitFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("dims") && fitDims != cfg.Dims() {
		if fitDims <= 0 {
			return fmt.Errorf("dimension must be positive, got %d", fitDims)
		}
		cfg.Basis = config.DefaultBasis(fitDims)
		cfg.Refinement.Extension = config.DefaultRefinement(fitDims).Extension
	}
	if flags.Changed("iterations") {
		cfg.Refinement.MaxIterations = fitIterations
	}
	if flags.Changed("tolerance") {
		cfg.Refinement.Tolerance = fitTolerance
	}
	if flags.Changed("threshold") {
		cfg.Refinement.ErrorThreshold = fitThreshold
	}
	if flags.Changed("percentage") {
		cfg.Refinement.Percentage = fitPercentage
	}
	if flags.Changed("smoothing") {
		cfg.Refinement.Smoothing = fitSmoothing
	}
	return config.ValidateConfig(cfg)
}

// fitRun loads the points, runs the refinement loop and stores the run with
// its history. Failures of the loop itself are recorded on the returned run.
func fitRun(ctx context.Context, store *state.Store, cfg *config.Config, pointsFile string) (*state.Run, error) {
	cloud, err := dataset.Load(pointsFile, cfg.Dims())
	if err != nil {
		return nil, err
	}

	absPoints, err := filepath.Abs(pointsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve points file: %w", err)
	}

	run := &state.Run{
		ID:         state.NewRunID(),
		PointsFile: absPoints,
		Dims:       cfg.Dims(),
		Points:     cloud.Len(),
		StartedAt:  time.Now().UTC(),
		Status:     state.RunStatusRunning,
		Config:     *cfg,
	}
	log := logging.With("run", run.ShortID())

	eng, err := newEngine(cfg, cloud, log)
	if err != nil {
		return nil, err
	}
	if err := store.CreateRun(run); err != nil {
		return nil, err
	}
	log.Info("fitting", "points", cloud.Len(), "dims", run.Dims, "max_iterations", cfg.Refinement.MaxIterations)

	result, history := eng.iterate(ctx, cfg.Refinement, 0)
	if err := store.SaveHistory(run.ID, history); err != nil {
		return nil, err
	}

	eng.finish(run, result)
	if err := store.UpdateRun(run.ID, func(r *state.Run) { *r = *run }); err != nil {
		return nil, err
	}

	eng.printSummary(run, result, log)
	return run, nil
}

func savePlot(store *state.Store, run *state.Run, path string) error {
	history, err := store.LoadHistory(run.ID)
	if err != nil {
		return err
	}
	if err := report.SaveConvergencePlot(fmt.Sprintf("Run %s", run.ShortID()), history, path); err != nil {
		return err
	}
	fmt.Printf("Wrote convergence plot to %s\n", path)
	return nil
}
