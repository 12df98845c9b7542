package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thruflo/hsfit/internal/config"
	"github.com/thruflo/hsfit/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "hsfit",
	Short: "Adaptive hierarchical spline fitting of point clouds",
	Long: `hsfit fits a hierarchical tensor spline to a parametrized point cloud.
It starts from a coarse uniform grid and repeatedly refines the basis around
the points with the largest error until the fit is within tolerance, no cell
is left to refine, or the iteration budget runs out.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("hsfit version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error); overrides config.yaml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// configureLogging applies the --log-level flag, falling back to the level in
// cfg.
func configureLogging(cfg *config.Config) error {
	name := logLevel
	if name == "" {
		name = cfg.Logging.Level
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logging.SetLevel(level)
	return nil
}
