package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thruflo/hsfit/internal/refine"
	"github.com/thruflo/hsfit/internal/state"
)

// RunReader abstracts run storage for testability.
type RunReader interface {
	ListRuns() ([]*state.Run, error)
	FindRun(id string) (*state.Run, error)
	LoadHistory(id string) ([]state.History, error)
}

// statusStore is the run reader used by the status command.
// It can be overridden in tests.
var statusStore RunReader

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Show run status",
	Long: `Shows the status of stored fit runs.

Without arguments, lists all runs with their status, final state and error.
With a run ID (or a unique prefix), shows the run's details and its
refinement history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	store := statusStore
	if store == nil {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		store = state.NewStore(cwd)
	}

	if len(args) == 0 {
		return listRuns(store)
	}

	return showRun(store, args[0])
}

func listRuns(store RunReader) error {
	runs, err := store.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	// Calculate column widths
	statusWidth := len("STATUS")
	stateWidth := len("STATE")
	for _, r := range runs {
		if len(r.Status) > statusWidth {
			statusWidth = len(r.Status)
		}
		if len(r.State) > stateWidth {
			stateWidth = len(r.State)
		}
	}

	fmt.Printf("%-8s  %-*s  %-*s  %5s  %s\n", "RUN", statusWidth, "STATUS", stateWidth, "STATE", "STEPS", "MAX ERROR")
	fmt.Printf("%s  %s  %s  %s  %s\n", strings.Repeat("-", 8), strings.Repeat("-", statusWidth),
		strings.Repeat("-", stateWidth), "-----", "---------")

	for _, r := range runs {
		fmt.Printf("%-8s  %-*s  %-*s  %5d  %s\n", r.ShortID(), statusWidth, r.Status, stateWidth, r.State,
			r.Steps, formatError(r.MaxError))
	}

	return nil
}

func showRun(store RunReader, id string) error {
	run, err := store.FindRun(id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	history, err := store.LoadHistory(run.ID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	fmt.Println("Run Details")
	fmt.Println("===========")
	fmt.Println()

	printField("ID", run.ID)
	printField("Points", fmt.Sprintf("%d from %s", run.Points, run.PointsFile))
	printField("Dimension", fmt.Sprintf("%d", run.Dims))
	printField("Started", formatTime(run.StartedAt))
	if !run.FinishedAt.IsZero() {
		printField("Duration", formatDuration(run.FinishedAt.Sub(run.StartedAt)))
	}
	printField("Status", run.Status)
	if run.State != "" {
		printField("State", run.State)
	}
	if run.Error != "" {
		printField("Error", run.Error)
	}
	fmt.Println()

	fmt.Println("Refinement")
	fmt.Println("----------")
	printField("Steps", fmt.Sprintf("%d", run.Steps))
	printField("Max level", fmt.Sprintf("%d", run.MaxLevel))
	printField("Max error", formatError(run.MaxError))
	printField("Tolerance", formatError(run.Config.Refinement.Tolerance))
	fmt.Println()

	if len(history) == 0 {
		fmt.Println("No history recorded.")
		return nil
	}

	fmt.Printf("  %4s  %-17s  %5s  %5s  %-10s  %s\n", "STEP", "OUTCOME", "BOXES", "LEVEL", "MAX ERROR", "MIN ERROR")
	for _, h := range history {
		fmt.Printf("  %4d  %-17s  %5d  %5d  %-10s  %s\n", h.Step, h.Outcome, len(h.Boxes), h.MaxLevel,
			formatError(h.MaxError), formatError(h.MinError))
	}

	if historyStalled(history) {
		fmt.Println()
		fmt.Printf("Warning: max error has not decreased over the last %d steps\n", stallWindow)
	}

	return nil
}

// historyStalled applies stall detection to stored history.
func historyStalled(history []state.History) bool {
	trace := make([]refine.Record, len(history))
	for i, h := range history {
		trace[i] = refine.Record{Step: h.Step, MaxError: h.MaxError}
	}
	return refine.DetectStall(trace, stallWindow)
}

func printField(label, value string) {
	fmt.Printf("  %-12s %s\n", label+":", value)
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
