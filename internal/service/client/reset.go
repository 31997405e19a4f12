package client

import (
	"context"
	"fmt"

	"github.com/oshokin/bell-scheduler/internal/logger"
)

// Reset empties the intake log and the snapshot and drops a raised immediate-ring flag.
// Reports are left in place; the normalizer rewrites them on its next pass.
func Reset(ctx context.Context, opts *Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err = openStore(cfg).Truncate(ctx); err != nil {
		return fmt.Errorf("reset data files: %w", err)
	}

	logger.InfoKV(ctx, "Intake log and snapshot cleared", "data_dir", cfg.DataDir)

	return nil
}
