package trigger

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/logger"
	"github.com/oshokin/bell-scheduler/internal/repository/diagnostics"
	"github.com/oshokin/bell-scheduler/internal/repository/store"
	"github.com/oshokin/bell-scheduler/internal/service/actuator"
)

// State is the phase of the trigger loop.
type State int32

const (
	// StateIdle waits for the next tick.
	StateIdle State = iota
	// StateEvaluating checks the current instant.
	StateEvaluating
	// StateFiring holds the actuator on.
	StateFiring
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEvaluating:
		return "evaluating"
	case StateFiring:
		return "firing"
	default:
		return "unknown"
	}
}

// Reason explains why a tick fired.
type Reason int

const (
	// ReasonImmediate is a claimed immediate-ring flag.
	ReasonImmediate Reason = iota + 1
	// ReasonConsole is a due console ring.
	ReasonConsole
	// ReasonExam is an expanded exam instant.
	ReasonExam
	// ReasonTimetable is a weekly timetable entry.
	ReasonTimetable
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonImmediate:
		return "immediate"
	case ReasonConsole:
		return "console"
	case ReasonExam:
		return "exam"
	case ReasonTimetable:
		return "timetable"
	default:
		return "unknown"
	}
}

// TriggerEvent is a fire decision. It is never persisted.
type TriggerEvent struct {
	// Instant is the evaluated second.
	Instant time.Time
	// Reasons lists every rule that matched, without duplicates.
	Reasons []Reason
}

// Source provides the snapshot and the immediate-ring flag.
type Source interface {
	LoadSnapshot(ctx context.Context) (bell.Schedule, error)
	TakeImmediate(ctx context.Context) (bell.TimeOfDay, bool, error)
}

const (
	// maxCatchUp is the largest gap of skipped seconds evaluated on one tick.
	maxCatchUp = 10 * time.Second
	// failureLogEvery limits how often a repeating snapshot failure is logged.
	failureLogEvery = 30 * time.Second
	// sourceName tags journal entries written by the loop.
	sourceName = "bell-trigger"
)

// LoopOption customizes a Loop.
type LoopOption func(*Loop)

// WithScheduler attaches the console scheduler.
func WithScheduler(scheduler *Scheduler) LoopOption {
	return func(l *Loop) {
		l.scheduler = scheduler
	}
}

// WithJournal records snapshot and flag failures.
func WithJournal(journal diagnostics.Journal) LoopOption {
	return func(l *Loop) {
		if journal != nil {
			l.journal = journal
		}
	}
}

// WithTimetable replaces the default weekly timetable.
func WithTimetable(timetable bell.WeeklyTimetable) LoopOption {
	return func(l *Loop) {
		l.timetable = timetable
	}
}

// WithLoopOffsets replaces the default offset table.
func WithLoopOffsets(offsets bell.OffsetTable) LoopOption {
	return func(l *Loop) {
		l.offsets = offsets
	}
}

// WithRingDuration sets how long each ring lasts.
func WithRingDuration(d time.Duration) LoopOption {
	return func(l *Loop) {
		l.ringDuration = d
	}
}

// WithLocation sets the wall-clock zone ticks are evaluated in.
func WithLocation(loc *time.Location) LoopOption {
	return func(l *Loop) {
		l.location = loc
	}
}

// Loop is the trigger loop. Tick must be called from a single goroutine.
type Loop struct {
	source       Source
	actuator     actuator.Actuator
	scheduler    *Scheduler
	journal      diagnostics.Journal
	offsets      bell.OffsetTable
	timetable    bell.WeeklyTimetable
	ringDuration time.Duration
	location     *time.Location

	// schedule is the last snapshot that loaded successfully.
	schedule bell.Schedule
	// loaded is set once a snapshot was read; from then on a missing file is a failure.
	loaded bool
	// cursor is the last evaluated second.
	cursor time.Time

	state       atomic.Int32
	fires       atomic.Int64
	failLimiter *rate.Limiter
}

// NewLoop creates a trigger loop reading from source and ringing through act.
func NewLoop(source Source, act actuator.Actuator, opts ...LoopOption) *Loop {
	l := &Loop{
		source:       source,
		actuator:     act,
		journal:      diagnostics.Discard{},
		offsets:      bell.DefaultOffsets(),
		timetable:    bell.DefaultTimetable(),
		ringDuration: 3 * time.Second,
		location:     time.Local,
		schedule:     make(bell.Schedule),
		failLimiter:  rate.NewLimiter(rate.Every(failureLogEvery), 1),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// State returns the current phase.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Fires returns how many times the actuator was fired.
func (l *Loop) Fires() int64 {
	return l.fires.Load()
}

// Tick evaluates the instant now and fires at most once.
// Returns the event that fired, or nil.
func (l *Loop) Tick(ctx context.Context, now time.Time) *TriggerEvent {
	l.state.Store(int32(StateEvaluating))
	defer l.state.Store(int32(StateIdle))

	now = now.In(l.location).Truncate(time.Second)
	reasons := make(map[Reason]struct{})

	// Requests that do not depend on the clock.
	l.collectRequests(ctx, reasons)

	l.reloadSnapshot(ctx)

	for _, instant := range l.unevaluated(now) {
		if reason, ok := l.match(instant); ok {
			reasons[reason] = struct{}{}
		}
	}

	if len(reasons) == 0 {
		return nil
	}

	event := &TriggerEvent{
		Instant: now,
		Reasons: sortedReasons(reasons),
	}

	l.fire(ctx, event)

	return event
}

// Run ticks every interval until ctx is canceled. onTick runs after each tick.
func (l *Loop) Run(ctx context.Context, interval time.Duration, onTick func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Tick(ctx, now)

			if onTick != nil {
				onTick()
			}
		}
	}
}

func (l *Loop) collectRequests(ctx context.Context, reasons map[Reason]struct{}) {
	baseTime, raised, err := l.source.TakeImmediate(ctx)

	switch {
	case err != nil:
		l.reportFailure(ctx, "Immediate ring flag unreadable", err)
	case raised:
		reasons[ReasonImmediate] = struct{}{}

		logger.InfoKV(ctx, "Immediate ring claimed", "base_time", baseTime.String())
	}

	if l.scheduler != nil && l.scheduler.TakeDue() > 0 {
		reasons[ReasonConsole] = struct{}{}
	}
}

func (l *Loop) reloadSnapshot(ctx context.Context) {
	schedule, err := l.source.LoadSnapshot(ctx)

	switch {
	case err == nil:
		l.schedule = schedule
		l.loaded = true
	case errors.Is(err, store.ErrNotFound) && !l.loaded:
		// Nothing published yet; only the weekly timetable applies.
	default:
		l.reportFailure(ctx, "Snapshot reload failed, keeping last good snapshot", err)
	}
}

// unevaluated returns the seconds in (cursor, now] and advances the cursor.
// Large gaps and backward jumps evaluate only now.
func (l *Loop) unevaluated(now time.Time) []time.Time {
	cursor := l.cursor
	l.cursor = now

	switch {
	case cursor.IsZero(), now.Before(cursor), now.Sub(cursor) > maxCatchUp:
		return []time.Time{now}
	case now.Equal(cursor):
		return nil
	}

	instants := make([]time.Time, 0, int(now.Sub(cursor)/time.Second))
	for t := cursor.Add(time.Second); !t.After(now); t = t.Add(time.Second) {
		instants = append(instants, t)
	}

	return instants
}

// match decides whether the instant rings according to the snapshot and the timetable.
func (l *Loop) match(instant time.Time) (Reason, bool) {
	var (
		date = bell.DateOf(instant)
		tod  = bell.TimeOfDayOf(instant)
	)

	switch entry := l.schedule.Entry(date).(type) {
	case bell.Holiday:
		return 0, false
	case bell.SlotSchedule:
		if len(entry) > 0 {
			return ReasonExam, slices.Contains(l.offsets.Instants(entry), tod)
		}
	}

	if l.timetable.Matches(date.Weekday(), tod) {
		return ReasonTimetable, true
	}

	return 0, false
}

func (l *Loop) fire(ctx context.Context, event *TriggerEvent) {
	l.state.Store(int32(StateFiring))
	l.fires.Add(1)

	logger.InfoKV(ctx, "Ringing bell",
		"instant", event.Instant.Format(time.DateTime),
		"reasons", reasonNames(event.Reasons),
		"duration", l.ringDuration.String(),
	)

	if err := l.actuator.Fire(ctx, l.ringDuration); err != nil {
		logger.ErrorKV(ctx, "Actuator failed", "error", err)
	}
}

func (l *Loop) reportFailure(ctx context.Context, message string, err error) {
	// A failure repeats every tick until fixed; log and journal it sparingly.
	if !l.failLimiter.Allow() {
		return
	}

	logger.WarnKV(ctx, message, "error", err)

	if recordErr := l.journal.Record(ctx, diagnostics.EntryFor(sourceName, 0, err)); recordErr != nil {
		logger.DebugKV(ctx, "Journal write failed", "error", recordErr)
	}
}

func reasonNames(reasons []Reason) []string {
	names := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		names = append(names, reason.String())
	}

	return names
}

func sortedReasons(reasons map[Reason]struct{}) []Reason {
	return slices.Sorted(maps.Keys(reasons))
}
