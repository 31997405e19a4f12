package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/service/trigger"
	"github.com/oshokin/bell-scheduler/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// options collects the flag overrides.
	options trigger.Options

	// rootCmd represents the base command for running the trigger loop.
	rootCmd = &cobra.Command{
		Use:   "bell-trigger [console-address]",
		Short: "Ring the bell according to the snapshot and the weekly timetable.",
		Long: `Evaluates the current second every tick against the normalized snapshot,
the weekly timetable, the immediate-ring flag and the console rings, and fires
the actuator at most once per tick.

Hosts the operator console gRPC service. The console address can be provided
as argument to override config (e.g., 127.0.0.1:50062).
Only one bell-trigger may run on a host unless --allow-multiple is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			if len(args) > 0 {
				options.ListenAddress = args[0]
			}

			options.ConfigPath = configPath

			return trigger.Run(ctx, &options)
		},
	}
)

// Execute runs the bell-trigger CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVar(&options.Driver, "driver", "", "override the actuator driver (gpio, log)")
	rootCmd.Flags().BoolVar(&options.AllowMultiple, "allow-multiple", false, "skip the single-instance check")

	err := rootCmd.Flags().MarkHidden("allow-multiple")
	if err != nil {
		panic(err)
	}
}
