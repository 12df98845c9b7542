package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thruflo/hsfit/internal/state"
)

var plotOutput string

var plotCmd = &cobra.Command{
	Use:   "plot <run-id>",
	Short: "Render a run's convergence plot",
	Long: `Renders the max and min point error of every refinement step of a run.

The image format follows the output file extension (png, svg, pdf). Without
--output the plot is written to convergence.png in the run's directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlot,
}

func init() {
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "", "output file")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	return plotRun(state.NewStore(cwd), args[0], plotOutput)
}

func plotRun(store *state.Store, id, output string) error {
	run, err := store.FindRun(id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if output == "" {
		output = filepath.Join(store.RunsDir(), run.ID, "convergence.png")
	}
	return savePlot(store, run, output)
}
