package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/service/intake"
	"github.com/oshokin/bell-scheduler/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// dataDir overrides the configured data directory.
	dataDir string

	// rootCmd represents the base command for running the intake endpoint.
	rootCmd = &cobra.Command{
		Use:   "bell-intake [listen-address]",
		Short: "Accept holiday, exam and emergency submissions.",
		Long: `Starts the gRPC intake endpoint. Each accepted submission is translated into
canonical intake lines and appended to the intake log for bell-normalizer.

The listen address can be provided as argument to override config (e.g., :50061).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return intake.Run(ctx, &intake.Options{
				ConfigPath:    configPath,
				DataDir:       dataDir,
				ListenAddress: listenAddress,
			})
		},
	}
)

// Execute runs the bell-intake CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVarP(&dataDir, "data-dir", "d", "", "override the data directory")
}
