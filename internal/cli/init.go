package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thruflo/hsfit/internal/config"
	"github.com/thruflo/hsfit/internal/state"
)

var (
	initDims  int
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .hsfit/ directory structure",
	Long: `Creates the .hsfit/ directory with a default configuration.

This command sets up:
  - config.yaml with the basis grid and refinement settings
  - runs/ where fit runs and their refinement history are stored`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().IntVarP(&initDims, "dims", "d", config.DefaultDims, "parametric dimension of the point clouds")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config.yaml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	return initProject(cwd, initDims, initForce)
}

func initProject(basePath string, dims int, force bool) error {
	if dims <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", dims)
	}

	configPath := config.Path(basePath)
	if fileExists(configPath) && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	runsDir := state.NewStore(basePath).RunsDir()
	if err := os.MkdirAll(runsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", runsDir, err)
	}

	cfg := config.DefaultConfigFor(dims)
	if err := config.SaveConfig(basePath, &cfg); err != nil {
		return err
	}

	fmt.Printf("Initialized %s/ for %d-dimensional point clouds\n", filepath.Join(basePath, config.DirName), dims)
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
