package normalizer

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/logger"
	"github.com/oshokin/bell-scheduler/internal/repository/diagnostics"
	"github.com/oshokin/bell-scheduler/internal/repository/store"
	"github.com/oshokin/bell-scheduler/internal/service/common"
	"github.com/oshokin/bell-scheduler/internal/version"
)

// Options controls the bell-normalizer process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// DataDir overrides the configured data directory.
	DataDir string
	// Every overrides the configured pass cadence.
	Every time.Duration
	// Once runs a single pass and exits.
	Once bool
	// NoWatch disables the early pass on intake writes.
	NoWatch bool
}

// failureLogEvery limits how often a repeating pass failure is logged.
const failureLogEvery = 30 * time.Second

// Run normalizes the intake log on a fixed cadence until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "bell-normalizer")
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

	if opts.Every > 0 {
		cfg.NormalizeEvery = opts.Every
	}

	normalizer, closeJournal := build(ctx, cfg)
	defer closeJournal()

	if opts.Once {
		stats, passErr := normalizer.Pass(ctx)
		if passErr != nil {
			return passErr
		}

		logStats(ctx, stats)

		return nil
	}

	// Only the first failure of a streak and then one per interval are logged.
	limiter := rate.NewLimiter(rate.Every(failureLogEvery), 1)
	runPass := func(reason string) {
		stats, passErr := normalizer.Pass(ctx)
		if passErr != nil {
			if limiter.Allow() {
				logger.ErrorKV(ctx, "Normalization pass failed", "reason", reason, "error", passErr)
			}

			return
		}

		logStats(ctx, stats)
	}

	// Setup the pass cadence; a slow pass is skipped rather than stacked.
	cronLogger := logger.NewCronLogger(ctx)
	scheduler := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
	)

	if _, err = scheduler.AddFunc("@every "+cfg.NormalizeEvery.String(), func() { runPass("schedule") }); err != nil {
		return fmt.Errorf("schedule passes: %w", err)
	}

	logger.InfoKV(ctx, "Normalizing intake log",
		"data_dir", cfg.DataDir,
		"intake_file", cfg.IntakeFile,
		"every", cfg.NormalizeEvery.String(),
	)

	// First pass right away so a restart publishes a fresh snapshot.
	runPass("startup")

	scheduler.Start()

	defer func() {
		<-scheduler.Stop().Done()
	}()

	if !opts.NoWatch {
		go func() {
			if watchErr := watchIntake(ctx, cfg.DataDir, cfg.IntakeFile, func() { runPass("intake written") }); watchErr != nil {
				logger.WarnKV(ctx, "Intake watcher stopped", "error", watchErr)
			}
		}()
	}

	common.NotifyReady(ctx)
	defer common.NotifyStopping(ctx)

	keepWatchdogAlive(ctx)

	logger.Info(ctx, "Context canceled, exiting")

	return nil
}

// build wires the normalizer to the on-disk store and journal.
func build(ctx context.Context, cfg *config.Config) (*Normalizer, func()) {
	st := store.NewOS(cfg.DataDir, store.Files{
		Intake:    cfg.IntakeFile,
		Snapshot:  cfg.SnapshotFile,
		Immediate: cfg.ImmediateFile,
	})

	var journal diagnostics.Journal = diagnostics.Discard{}

	sqlite, err := diagnostics.Open(ctx, cfg.Path(cfg.DiagnosticsDB))
	if err != nil {
		logger.WarnKV(ctx, "Diagnostics journal unavailable", "path", cfg.Path(cfg.DiagnosticsDB), "error", err)
	} else {
		journal = sqlite
	}

	normalizer := New(st, journal,
		WithReports(cfg.ReportCSV, cfg.ReportICS),
		WithRingDuration(cfg.Actuator.RingDuration),
	)

	return normalizer, func() {
		_ = journal.Close()
	}
}

// keepWatchdogAlive pings the systemd watchdog until ctx is canceled.
func keepWatchdogAlive(ctx context.Context) {
	interval := common.WatchdogInterval(ctx)
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			common.NotifyWatchdog(ctx)
		}
	}
}

func logStats(ctx context.Context, stats *PassStats) {
	if stats.Lines == 0 && !stats.SnapshotChanged {
		return
	}

	logger.DebugKV(ctx, "Pass completed",
		"lines", stats.Lines,
		"dropped", stats.Dropped,
		"consumed", stats.Consumed,
		"carried", stats.Carried,
		"conflicts", stats.Conflicts,
		"dates", stats.Dates,
		"snapshot_changed", stats.SnapshotChanged,
		"immediate", stats.Immediate,
	)
}
