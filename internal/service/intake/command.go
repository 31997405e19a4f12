package intake

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"

	api "github.com/oshokin/bell-scheduler/internal/api/grpc/intake"
	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/logger"
	"github.com/oshokin/bell-scheduler/internal/repository/store"
	"github.com/oshokin/bell-scheduler/internal/service/common"
	"github.com/oshokin/bell-scheduler/internal/version"
)

// Options controls the bell-intake process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// DataDir overrides the configured data directory.
	DataDir string
	// ListenAddress overrides the configured intake address.
	ListenAddress string
}

// Run serves the intake endpoint until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "bell-intake")
	logger.InfoKV(ctx, "Starting", version.Fields()...)

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if ctx, err = logger.Configure(ctx, cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	// Command line arguments override config.
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	if opts.ListenAddress != "" {
		cfg.IntakeAddress = opts.ListenAddress
	}

	st := store.NewOS(cfg.DataDir, store.Files{
		Intake:    cfg.IntakeFile,
		Snapshot:  cfg.SnapshotFile,
		Immediate: cfg.ImmediateFile,
	})

	logger.InfoKV(ctx, "Accepting submissions", "data_dir", cfg.DataDir, "intake_file", cfg.IntakeFile)

	return common.Serve(ctx, cfg.IntakeAddress, func(registrar grpc.ServiceRegistrar) {
		api.RegisterIntakeServiceServer(registrar, api.NewServer(NewService(st)))
	}, func(net.Addr) {
		common.NotifyReady(ctx)
	})
}
