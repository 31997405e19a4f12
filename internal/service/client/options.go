package client

import (
	"context"
	"fmt"

	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/repository/store"
	"github.com/oshokin/bell-scheduler/internal/service/common"
)

// Options configures how bellctl reaches the bell services.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// Address overrides the service address from config when specified.
	Address string
	// DataDir overrides the configured data directory.
	DataDir string
}

// loadConfig reads settings and applies the command line overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	return cfg, nil
}

// connect dials address, or the override, as the current system actor.
func connect(ctx context.Context, cfg *config.Config, address, override string) (*common.Client, error) {
	if override != "" {
		address = override
	}

	// Identify current user and hostname for audit logging.
	actor, err := common.DetectActor()
	if err != nil {
		return nil, fmt.Errorf("detect actor: %w", err)
	}

	client, err := common.Dial(ctx, address, common.WithCallTimeout(cfg.Timeout), common.WithActor(actor))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	return client, nil
}

func openStore(cfg *config.Config) *store.Store {
	return store.NewOS(cfg.DataDir, store.Files{
		Intake:    cfg.IntakeFile,
		Snapshot:  cfg.SnapshotFile,
		Immediate: cfg.ImmediateFile,
	})
}
