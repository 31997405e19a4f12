package trigger

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"

	"github.com/oshokin/bell-scheduler/internal/api/grpc/console"
	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/logger"
	"github.com/oshokin/bell-scheduler/internal/repository/diagnostics"
	"github.com/oshokin/bell-scheduler/internal/repository/state"
	"github.com/oshokin/bell-scheduler/internal/repository/store"
	"github.com/oshokin/bell-scheduler/internal/service/actuator"
	"github.com/oshokin/bell-scheduler/internal/service/common"
	"github.com/oshokin/bell-scheduler/internal/version"
)

// ProcessName is the executable name of the trigger process.
const ProcessName = "bell-trigger"

// Options controls the bell-trigger process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// DataDir overrides the configured data directory.
	DataDir string
	// ListenAddress overrides the configured console address.
	ListenAddress string
	// Driver overrides the configured actuator driver.
	Driver string
	// AllowMultiple skips the single-instance guard.
	AllowMultiple bool
}

// Run evaluates the schedule every tick and serves the operator console until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, ProcessName)
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
		cfg.ConsoleAddress = opts.ListenAddress
	}

	if opts.Driver != "" {
		cfg.Actuator.Driver = opts.Driver
	}

	// Two loops on one relay would ring every instant twice.
	if !opts.AllowMultiple {
		if err = common.EnsureSingleInstance(ProcessName); err != nil {
			return err
		}
	}

	timetable, err := cfg.WeeklyTimetable()
	if err != nil {
		return fmt.Errorf("parse timetable: %w", err)
	}

	act, err := actuator.New(cfg.Actuator)
	if err != nil {
		return fmt.Errorf("open actuator: %w", err)
	}

	var journal diagnostics.Journal = diagnostics.Discard{}

	sqlite, err := diagnostics.Open(ctx, cfg.Path(cfg.DiagnosticsDB))
	if err != nil {
		logger.WarnKV(ctx, "Diagnostics journal unavailable", "path", cfg.Path(cfg.DiagnosticsDB), "error", err)
	} else {
		journal = sqlite
	}

	defer func() {
		_ = journal.Close()
	}()

	st := store.NewOS(cfg.DataDir, store.Files{
		Intake:    cfg.IntakeFile,
		Snapshot:  cfg.SnapshotFile,
		Immediate: cfg.ImmediateFile,
	})

	scheduler := NewScheduler(ctx, WithRepository(state.NewFileRepository(cfg.Path(cfg.ConsoleStateFile))))

	restored, dropped, err := scheduler.Restore(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Pending console rings not restored", "error", err)
	} else if restored > 0 || dropped > 0 {
		logger.InfoKV(ctx, "Pending console rings restored", "restored", restored, "dropped", dropped)
	}

	loop := NewLoop(st, act,
		WithScheduler(scheduler),
		WithJournal(journal),
		WithTimetable(timetable),
		WithRingDuration(cfg.Actuator.RingDuration),
	)

	// The console lives and dies with the loop.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- common.Serve(ctx, cfg.ConsoleAddress, func(registrar grpc.ServiceRegistrar) {
			console.RegisterConsoleServiceServer(registrar, console.NewServer(NewConsoleService(scheduler)))
		}, nil)

		cancel()
	}()

	logger.InfoKV(ctx, "Trigger loop started",
		"data_dir", cfg.DataDir,
		"snapshot_file", cfg.SnapshotFile,
		"driver", cfg.Actuator.Driver,
		"tick", cfg.Tick.String(),
		"console_address", cfg.ConsoleAddress,
	)

	common.NotifyReady(ctx)
	defer common.NotifyStopping(ctx)

	loop.Run(ctx, cfg.Tick, watchdogPinger(ctx))

	if err = <-serveErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info(ctx, "Context canceled, exiting")

	return nil
}

// watchdogPinger returns a tick hook that pings the systemd watchdog at most once per interval.
// A stuck loop stops pinging, so systemd restarts the process.
func watchdogPinger(ctx context.Context) func() {
	interval := common.WatchdogInterval(ctx)
	if interval <= 0 {
		return nil
	}

	limiter := rate.NewLimiter(rate.Every(interval), 1)

	return func() {
		if limiter.Allow() {
			common.NotifyWatchdog(ctx)
		}
	}
}
