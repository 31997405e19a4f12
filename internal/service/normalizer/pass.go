package normalizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/logger"
	"github.com/oshokin/bell-scheduler/internal/repository/diagnostics"
	"github.com/oshokin/bell-scheduler/internal/repository/store"
	"github.com/oshokin/bell-scheduler/internal/service/exporter"
)

// Storage is the subset of the shared store a pass needs.
type Storage interface {
	ReadIntake(ctx context.Context) (*store.Intake, error)
	CompactIntake(ctx context.Context, read *store.Intake, keep []string) (int, error)
	PublishSnapshot(ctx context.Context, schedule bell.Schedule) (bool, error)
	RaiseImmediate(ctx context.Context, baseTime bell.TimeOfDay) error
	PublishFile(ctx context.Context, name string, data []byte) error
}

// PassStats summarizes one normalization pass.
type PassStats struct {
	// Lines is the number of intake lines read.
	Lines int
	// Dropped counts malformed lines removed from the log.
	Dropped int
	// Consumed counts immediate-ring lines removed from the log.
	Consumed int
	// Carried counts lines appended while the pass was running.
	Carried int
	// Conflicts counts exam entries suppressed by a holiday.
	Conflicts int
	// Dates is the number of dates in the snapshot.
	Dates int
	// SnapshotChanged is true when a new snapshot was published.
	SnapshotChanged bool
	// Immediate is true when the immediate-ring flag was raised.
	Immediate bool
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithReports sets the report file names; empty names disable a report.
func WithReports(csvName, icsName string) Option {
	return func(n *Normalizer) {
		n.reportCSV = csvName
		n.reportICS = icsName
	}
}

// WithOffsets replaces the default offset table.
func WithOffsets(offsets bell.OffsetTable) Option {
	return func(n *Normalizer) {
		n.offsets = offsets
	}
}

// WithRingDuration sets the event length used in the iCalendar report.
func WithRingDuration(d time.Duration) Option {
	return func(n *Normalizer) {
		n.ringDuration = d
	}
}

// WithClock stamps the iCalendar report with now instead of a stamp derived from the snapshot.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.stamp = func(bell.Schedule) time.Time { return now() }
	}
}

// sourceName tags journal entries written by the normalizer.
const sourceName = "bell-normalizer"

// Normalizer runs normalization passes. Passes are serialized.
type Normalizer struct {
	storage      Storage
	journal      diagnostics.Journal
	offsets      bell.OffsetTable
	reportCSV    string
	reportICS    string
	ringDuration time.Duration
	stamp        func(bell.Schedule) time.Time

	mu sync.Mutex
	// exported is set once reports were written by this process.
	exported bool
}

// New creates a Normalizer. A nil journal discards diagnostics.
func New(storage Storage, journal diagnostics.Journal, opts ...Option) *Normalizer {
	if journal == nil {
		journal = diagnostics.Discard{}
	}

	n := &Normalizer{
		storage:      storage,
		journal:      journal,
		offsets:      bell.DefaultOffsets(),
		ringDuration: 3 * time.Second,
		stamp:        exporter.StampOf,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Pass reads the intake log, publishes the snapshot, raises the immediate-ring
// flag when requested, compacts the log and exports the reports.
func (n *Normalizer) Pass(ctx context.Context) (*PassStats, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	intake, err := n.storage.ReadIntake(ctx)
	if err != nil {
		n.journalError(ctx, 0, err)

		return nil, fmt.Errorf("read intake: %w", err)
	}

	stats := &PassStats{
		Lines: len(intake.Lines),
	}

	// Parse every line; malformed ones are dropped for good.
	var (
		records = make([]bell.Record, 0, len(intake.Lines))
		keep    = make([]string, 0, len(intake.Lines))
	)

	for i, line := range intake.Lines {
		record, parseErr := bell.ParseRecord(line)
		if parseErr != nil {
			stats.Dropped++

			logger.WarnKV(ctx, "Dropping malformed intake line", "line", i+1, "error", parseErr)
			n.journalError(ctx, i+1, parseErr)

			continue
		}

		records = append(records, record)

		if record.Kind == bell.KindImmediateRing {
			stats.Consumed++
			continue
		}

		keep = append(keep, record.Raw)
	}

	result := Fold(records)
	stats.Conflicts = result.Conflicts
	stats.Dates = len(result.Schedule)

	if result.Conflicts > 0 {
		logger.DebugKV(ctx, "Holiday overrides resolved", "conflicts", result.Conflicts)
	}

	stats.SnapshotChanged, err = n.storage.PublishSnapshot(ctx, result.Schedule)
	if err != nil {
		n.journalError(ctx, 0, err)

		return nil, fmt.Errorf("publish snapshot: %w", err)
	}

	// Rewrite the log only when something was removed from it. The immediate
	// ring line must be gone before the flag is raised, so it rings once.
	if len(keep) != len(intake.Lines) {
		stats.Carried, err = n.storage.CompactIntake(ctx, intake, keep)
		if err != nil {
			n.journalError(ctx, 0, err)

			return nil, fmt.Errorf("compact intake: %w", err)
		}
	}

	if result.Immediate != nil {
		if err = n.storage.RaiseImmediate(ctx, *result.Immediate); err != nil {
			n.journalError(ctx, 0, err)

			return nil, fmt.Errorf("raise immediate ring: %w", err)
		}

		stats.Immediate = true

		logger.InfoKV(ctx, "Immediate ring requested", "base_time", result.Immediate.String())
	}

	if stats.SnapshotChanged || !n.exported {
		if err = n.export(ctx, result.Schedule); err != nil {
			n.journalError(ctx, 0, err)

			return nil, err
		}

		n.exported = true
	}

	return stats, nil
}

func (n *Normalizer) export(ctx context.Context, schedule bell.Schedule) error {
	if n.reportCSV == "" && n.reportICS == "" {
		return nil
	}

	reports, err := exporter.Render(schedule, n.offsets, n.ringDuration, n.stamp(schedule))
	if err != nil {
		return fmt.Errorf("render reports: %w", err)
	}

	if n.reportCSV != "" {
		if err = n.storage.PublishFile(ctx, n.reportCSV, reports.CSV); err != nil {
			return fmt.Errorf("publish csv report: %w", err)
		}
	}

	if n.reportICS != "" {
		if err = n.storage.PublishFile(ctx, n.reportICS, reports.ICS); err != nil {
			return fmt.Errorf("publish ics report: %w", err)
		}
	}

	return nil
}

func (n *Normalizer) journalError(ctx context.Context, line int, err error) {
	if recordErr := n.journal.Record(ctx, diagnostics.EntryFor(sourceName, line, err)); recordErr != nil {
		logger.WarnKV(ctx, "Journal write failed", "error", recordErr)
	}
}
