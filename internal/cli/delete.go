package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thruflo/hsfit/internal/state"
)

var (
	deleteForce bool
	deleteAll   bool
)

// deleteInput is where the confirmation prompt reads from.
// It can be overridden in tests.
var deleteInput io.Reader = os.Stdin

var deleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete stored runs",
	Long: `Deletes a run's directory, including its history and plots.

Examples:
  hsfit delete 5f0c1d2e
  hsfit delete 5f0c1d2e --force    # skip confirmation
  hsfit delete --all --force       # delete every run without confirmation`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Skip confirmation prompt")
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "Delete all runs")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	store := state.NewStore(cwd)

	if deleteAll {
		if len(args) > 0 {
			return fmt.Errorf("cannot specify a run with --all flag")
		}
		return deleteAllRuns(store, deleteForce)
	}
	if len(args) == 0 {
		return fmt.Errorf("a run id is required (or use --all)")
	}
	return deleteRun(store, args[0], deleteForce)
}

func deleteRun(store *state.Store, id string, force bool) error {
	run, err := store.FindRun(id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if !force && !confirm(fmt.Sprintf("Delete run %s (%s, %d steps)?", run.ShortID(), run.Status, run.Steps)) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := store.DeleteRun(run.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted run %s\n", run.ShortID())
	return nil
}

func deleteAllRuns(store *state.Store, force bool) error {
	runs, err := store.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	if !force && !confirm(fmt.Sprintf("Delete all %d runs?", len(runs))) {
		fmt.Println("Aborted.")
		return nil
	}

	for _, run := range runs {
		if err := store.DeleteRun(run.ID); err != nil {
			return err
		}
	}
	fmt.Printf("Deleted %d runs\n", len(runs))
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(deleteInput)
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
