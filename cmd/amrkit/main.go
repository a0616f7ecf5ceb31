package main

import (
	"fmt"
	"github.com/notargets/amrkit/analysis"
	"github.com/notargets/amrkit/athena"
	"github.com/notargets/amrkit/fields"
	"github.com/notargets/amrkit/results"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"os"
)

var (
	// Global flags
	verbose bool
	device  string
	workers int
	output  string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "amrkit",
	Short: "Post-process Athena++ adaptive mesh refinement snapshots",
	Long: `amrkit loads Athena++ athdf snapshots, derives physical fields on the
mesh block hierarchy and reduces them to sums, averages, histograms,
profiles and uniform-grid slices.

Results print as YAML unless -o names a .yaml, .yaml.zst or .h5 file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if device != "auto" && device != "host" {
			return fmt.Errorf("--device %q: want auto or host", device)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&device, "device", "auto", "array backend: auto (OCCA device when available) or host")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 1, "blocks resampled concurrently")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "results file (.yaml, .yaml.zst, .h5)")

	rootCmd.AddCommand(infoCmd, sumCmd, avgCmd, histCmd, profileCmd, sliceCmd, runCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openSnapshot loads path into a registry; the caller closes the backend
func openSnapshot(path string) (*fields.Registry, error) {
	return analysis.Open(&analysis.Config{Input: path, Device: device}, analysis.WithLogger(logger))
}

// newResults starts a result set for the snapshot at path
func newResults(path string, reg *fields.Registry) *results.Results {
	num, err := athena.SnapshotNumber(path)
	if err != nil {
		num = -1
	}
	return results.New(path, num, reg.Mesh())
}

// emit saves res to --output, or prints it as YAML
func emit(cmd *cobra.Command, res *results.Results) error {
	if output == "" {
		return res.WriteYAML(cmd.OutOrStdout())
	}
	if err := res.Save(output); err != nil {
		return err
	}
	logger.Info("results saved", zap.String("path", output), zap.Stringer("run_id", res.RunID))
	return nil
}
