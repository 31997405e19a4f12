package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/service/normalizer"
	"github.com/oshokin/bell-scheduler/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// options collects the flag overrides.
	options normalizer.Options

	// rootCmd represents the base command for running the normalizer.
	rootCmd = &cobra.Command{
		Use:   "bell-normalizer",
		Short: "Fold the intake log into the normalized bell snapshot.",
		Long: `Reads the intake log on a fixed cadence, drops malformed lines, resolves
holiday conflicts and publishes the normalized snapshot read by bell-trigger.

Immediate-ring requests raise the immediate-ring flag and are removed from the log.
CSV and iCalendar reports are refreshed whenever the snapshot changes.
Writes to the intake log trigger an early pass unless --no-watch is set.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options.ConfigPath = configPath

			return normalizer.Run(ctx, &options)
		},
	}
)

// Execute runs the bell-normalizer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&options.DataDir, "data-dir", "d", "", "override the data directory")
	rootCmd.Flags().DurationVarP(&options.Every, "every", "e", 0, "override the pass cadence")
	rootCmd.Flags().BoolVar(&options.Once, "once", false, "run a single pass and exit")
	rootCmd.Flags().BoolVar(&options.NoWatch, "no-watch", false, "do not watch the intake log for writes")
}
