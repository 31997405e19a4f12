package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/service/client"
	"github.com/oshokin/bell-scheduler/internal/version"
)

var (
	// options holds the persistent flags shared by every subcommand.
	options client.Options

	// rootCmd represents the base command for operating the bell.
	rootCmd = &cobra.Command{
		Use:   "bellctl",
		Short: "Operate the bell scheduler.",
		Long: `Submits holidays, exams and emergency rings to bell-intake, drives manual
rings through the console hosted by bell-trigger, and reads reports,
diagnostics and process status from the data directory.`,
		SilenceUsage: true,
	}
)

// Execute runs the bellctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run executes action with a context canceled on SIGTERM or SIGINT.
func run(cmd *cobra.Command, action func(ctx context.Context) error) error {
	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return action(ctx)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.Address, "address", "a", "", "override the intake or console address")
	flags.StringVarP(&options.DataDir, "data-dir", "d", "", "override the data directory")

	rootCmd.AddCommand(
		newHolidayCommand(),
		newExamCommand(),
		newEmergencyCommand(),
		newRingCommand(),
		newScheduleCommand(),
		newPendingCommand(),
		newClearCommand(),
		newReportCommand(),
		newDiagnosticsCommand(),
		newStatusCommand(),
		newResetCommand(),
	)
}
