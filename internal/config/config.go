package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/logger"
)

// Config holds the settings shared by the bell binaries.
type Config struct {
	// DataDir is the directory holding the intake log, snapshot, flag and reports.
	DataDir string `yaml:"data_dir"`
	// IntakeFile is the append-only intake log, relative to DataDir.
	IntakeFile string `yaml:"intake_file"`
	// SnapshotFile is the Normalized Snapshot, relative to DataDir.
	SnapshotFile string `yaml:"snapshot_file"`
	// ImmediateFile is the immediate-ring flag, relative to DataDir.
	ImmediateFile string `yaml:"immediate_file"`
	// ReportCSV is the tabular report, relative to DataDir.
	ReportCSV string `yaml:"report_csv"`
	// ReportICS is the iCalendar report, relative to DataDir.
	ReportICS string `yaml:"report_ics"`
	// DiagnosticsDB is the SQLite diagnostics journal, relative to DataDir.
	DiagnosticsDB string `yaml:"diagnostics_db"`
	// ConsoleStateFile keeps pending console rings across restarts, relative to DataDir.
	ConsoleStateFile string `yaml:"console_state_file"`
	// IntakeAddress is the gRPC address of the intake service.
	IntakeAddress string `yaml:"intake_addr"`
	// ConsoleAddress is the gRPC address of the operator console hosted by the trigger loop.
	ConsoleAddress string `yaml:"console_addr"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// NormalizeEvery is the normalizer cadence.
	NormalizeEvery time.Duration `yaml:"normalize_every"`
	// Tick is the trigger loop resolution.
	Tick time.Duration `yaml:"tick"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// LogFormat is "console" or "json".
	LogFormat string `yaml:"log_format"`
	// Actuator configures the bell driver.
	Actuator ActuatorConfig `yaml:"actuator"`
	// Timetable overrides the built-in weekly timetable.
	Timetable TimetableConfig `yaml:"timetable"`
}

// ActuatorConfig selects and configures the bell driver.
type ActuatorConfig struct {
	// Driver is "gpio" for the relay or "log" for a dry run.
	Driver string `yaml:"driver"`
	// Pin is the periph.io GPIO name of the relay, e.g. GPIO4.
	Pin string `yaml:"pin"`
	// RingDuration is how long the relay stays energized per ring.
	RingDuration time.Duration `yaml:"ring_duration"`
}

// TimetableConfig lists ring times as HH:MM:SS strings.
type TimetableConfig struct {
	// Saturday ring times.
	Saturday []string `yaml:"saturday"`
	// Weekday ring times, Monday through Friday.
	Weekday []string `yaml:"weekday"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "bell-settings.yaml"

	// DefaultIntakeFilename is the default intake log filename.
	DefaultIntakeFilename = "input.txt"
	// DefaultSnapshotFilename is the default Normalized Snapshot filename.
	DefaultSnapshotFilename = "final.txt"
	// DefaultImmediateFilename is the default immediate-ring flag filename.
	DefaultImmediateFilename = "immediate.flag"
	// DefaultReportCSVFilename is the default CSV report filename.
	DefaultReportCSVFilename = "bell_events.csv"
	// DefaultReportICSFilename is the default iCalendar report filename.
	DefaultReportICSFilename = "bell_events.ics"
	// DefaultDiagnosticsFilename is the default diagnostics journal filename.
	DefaultDiagnosticsFilename = "diagnostics.db"
	// DefaultConsoleStateFilename is the default pending console rings filename.
	DefaultConsoleStateFilename = "console_state.json"

	// DefaultIntakeAddress is the default intake gRPC address.
	DefaultIntakeAddress = "127.0.0.1:50061"
	// DefaultConsoleAddress is the default console gRPC address.
	DefaultConsoleAddress = "127.0.0.1:50062"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second
	// DefaultNormalizeEvery is the default normalizer cadence.
	DefaultNormalizeEvery = 2 * time.Second
	// DefaultTick is the default trigger loop resolution.
	DefaultTick = time.Second
	// DefaultRingDuration is how long a ring lasts by default.
	DefaultRingDuration = 3 * time.Second

	// DriverGPIO drives a relay through periph.io.
	DriverGPIO = "gpio"
	// DriverLog only logs rings.
	DriverLog = "log"
	// DefaultPin is the BCM pin of the relay on the reference board.
	DefaultPin = "GPIO4"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownDriver is returned for an unsupported actuator driver.
	errUnknownDriver = errors.New("unknown actuator driver")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Defaults never fail validation.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	applyDefaults(settings)

	for _, address := range []string{settings.IntakeAddress, settings.ConsoleAddress} {
		if _, err := net.ResolveTCPAddr("tcp", address); err != nil {
			return fmt.Errorf("invalid address %q: %w", address, err)
		}
	}

	switch settings.Actuator.Driver {
	case DriverGPIO, DriverLog:
	default:
		return fmt.Errorf("%w: %q", errUnknownDriver, settings.Actuator.Driver)
	}

	if _, err := logger.ParseFormat(settings.LogFormat); err != nil {
		return err
	}

	if _, err := settings.WeeklyTimetable(); err != nil {
		return err
	}

	return nil
}

// WeeklyTimetable parses the configured timetable.
func (c *Config) WeeklyTimetable() (bell.WeeklyTimetable, error) {
	saturday, err := parseTimes(c.Timetable.Saturday)
	if err != nil {
		return bell.WeeklyTimetable{}, fmt.Errorf("timetable.saturday: %w", err)
	}

	weekday, err := parseTimes(c.Timetable.Weekday)
	if err != nil {
		return bell.WeeklyTimetable{}, fmt.Errorf("timetable.weekday: %w", err)
	}

	return bell.NewWeeklyTimetable(saturday, weekday), nil
}

// Path resolves a data file name against DataDir.
func (c *Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}

func applyDefaults(settings *Config) {
	setDefault(&settings.DataDir, ".")
	setDefault(&settings.IntakeFile, DefaultIntakeFilename)
	setDefault(&settings.SnapshotFile, DefaultSnapshotFilename)
	setDefault(&settings.ImmediateFile, DefaultImmediateFilename)
	setDefault(&settings.ReportCSV, DefaultReportCSVFilename)
	setDefault(&settings.ReportICS, DefaultReportICSFilename)
	setDefault(&settings.DiagnosticsDB, DefaultDiagnosticsFilename)
	setDefault(&settings.ConsoleStateFile, DefaultConsoleStateFilename)
	setDefault(&settings.IntakeAddress, DefaultIntakeAddress)
	setDefault(&settings.ConsoleAddress, DefaultConsoleAddress)
	setDefault(&settings.LogLevel, "info")
	setDefault(&settings.LogFormat, "console")
	setDefault(&settings.Actuator.Driver, DriverLog)
	setDefault(&settings.Actuator.Pin, DefaultPin)

	settings.Actuator.Driver = strings.ToLower(settings.Actuator.Driver)

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.NormalizeEvery <= 0 {
		settings.NormalizeEvery = DefaultNormalizeEvery
	}

	if settings.Tick <= 0 {
		settings.Tick = DefaultTick
	}

	if settings.Actuator.RingDuration <= 0 {
		settings.Actuator.RingDuration = DefaultRingDuration
	}

	if len(settings.Timetable.Saturday) == 0 && len(settings.Timetable.Weekday) == 0 {
		defaults := bell.DefaultTimetable()
		settings.Timetable.Saturday = formatTimes(defaults.Saturday)
		settings.Timetable.Weekday = formatTimes(defaults.Weekday)
	}
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

func parseTimes(values []string) ([]bell.TimeOfDay, error) {
	times := make([]bell.TimeOfDay, 0, len(values))

	for _, value := range values {
		t, err := bell.ParseTimeOfDay(value)
		if err != nil {
			return nil, err
		}

		times = append(times, t)
	}

	return times, nil
}

func formatTimes(times []bell.TimeOfDay) []string {
	out := make([]string, 0, len(times))
	for _, t := range times {
		out = append(out, t.String())
	}

	return out
}
