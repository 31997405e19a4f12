package trigger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/repository/store"
)

// fakeSource serves a fixed snapshot and flag.
type fakeSource struct {
	mu        sync.Mutex
	schedule  bell.Schedule
	err       error
	immediate bool
}

func (f *fakeSource) LoadSnapshot(context.Context) (bell.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	return f.schedule, nil
}

func (f *fakeSource) TakeImmediate(context.Context) (bell.TimeOfDay, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raised := f.immediate
	f.immediate = false

	return bell.NewTimeOfDay(9, 0, 0), raised, nil
}

func (f *fakeSource) set(schedule bell.Schedule, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.schedule = schedule
	f.err = err
}

// countingActuator records fires without blocking.
type countingActuator struct {
	mu    sync.Mutex
	fires int
}

func (a *countingActuator) Fire(context.Context, time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.fires++

	return nil
}

func (a *countingActuator) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.fires
}

func scheduleOf(t *testing.T, lines ...string) bell.Schedule {
	t.Helper()

	schedule := make(bell.Schedule)

	for _, line := range lines {
		record, err := bell.ParseRecord(line)
		require.NoError(t, err)
		schedule.Apply(record)
	}

	return schedule
}

func at(t *testing.T, value string) time.Time {
	t.Helper()

	instant, err := time.ParseInLocation(time.DateTime, value, time.UTC)
	require.NoError(t, err)

	return instant
}

func newTestLoop(source Source, act *countingActuator, opts ...LoopOption) *Loop {
	return NewLoop(source, act, append([]LoopOption{WithLocation(time.UTC)}, opts...)...)
}

// TestLoop_HolidaySuppressesTimetable verifies no ring on a holiday.
func TestLoop_HolidaySuppressesTimetable(t *testing.T) {
	t.Parallel()

	act := new(countingActuator)
	loop := newTestLoop(&fakeSource{schedule: scheduleOf(t, "0,15-08-2024")}, act)

	require.Nil(t, loop.Tick(context.Background(), at(t, "2024-08-15 09:00:00")))
	require.Zero(t, act.count())
}

// TestLoop_Timetable verifies weekday and Sunday behavior of the weekly timetable.
func TestLoop_Timetable(t *testing.T) {
	t.Parallel()

	act := new(countingActuator)
	loop := newTestLoop(&fakeSource{schedule: make(bell.Schedule)}, act)
	ctx := context.Background()

	event := loop.Tick(ctx, at(t, "2024-03-21 09:00:00"))
	require.NotNil(t, event)
	require.Equal(t, []Reason{ReasonTimetable}, event.Reasons)

	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-21 09:01:00")))

	// Saturday has no afternoon bells, Sunday has none at all.
	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-23 13:00:00")))
	require.NotNil(t, loop.Tick(ctx, at(t, "2024-03-23 12:55:00")))
	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-24 09:00:00")))

	require.Equal(t, 2, act.count())
}

// TestLoop_ExamSlot verifies exam instants replace the timetable on that date.
func TestLoop_ExamSlot(t *testing.T) {
	t.Parallel()

	act := new(countingActuator)
	loop := newTestLoop(&fakeSource{schedule: scheduleOf(t, "1,2,20-03-2024,10:00:00")}, act)
	ctx := context.Background()

	event := loop.Tick(ctx, at(t, "2024-03-20 10:00:00"))
	require.NotNil(t, event)
	require.Equal(t, []Reason{ReasonExam}, event.Reasons)

	require.NotNil(t, loop.Tick(ctx, at(t, "2024-03-20 10:05:00")))
	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-20 10:06:00")))
	require.NotNil(t, loop.Tick(ctx, at(t, "2024-03-20 12:15:00")))

	// Timetable entries do not ring on an exam date.
	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-20 13:00:00")))

	require.Equal(t, 3, act.count())
}

// TestLoop_CatchUp verifies skipped seconds are evaluated after a short gap.
func TestLoop_CatchUp(t *testing.T) {
	t.Parallel()

	act := new(countingActuator)
	loop := newTestLoop(&fakeSource{schedule: make(bell.Schedule)}, act)
	ctx := context.Background()

	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-21 08:54:58")))

	event := loop.Tick(ctx, at(t, "2024-03-21 08:55:03"))
	require.NotNil(t, event)
	require.Equal(t, at(t, "2024-03-21 08:55:03"), event.Instant)

	// The same second is never evaluated twice.
	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-21 08:55:03")))

	// A gap over the catch-up window only evaluates now.
	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-21 08:59:59").Add(-time.Minute)))
	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-21 09:00:30")))

	require.Equal(t, 1, act.count())
}

// TestLoop_BackwardJump verifies a clock step back still evaluates the new now.
func TestLoop_BackwardJump(t *testing.T) {
	t.Parallel()

	act := new(countingActuator)
	loop := newTestLoop(&fakeSource{schedule: make(bell.Schedule)}, act)
	ctx := context.Background()

	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-21 09:00:05")))
	require.NotNil(t, loop.Tick(ctx, at(t, "2024-03-21 09:00:00")))
	require.Equal(t, 1, act.count())
}

// TestLoop_OneFirePerTick verifies coinciding rules ring once.
func TestLoop_OneFirePerTick(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	act := new(countingActuator)
	source := &fakeSource{schedule: make(bell.Schedule), immediate: true}
	scheduler := NewScheduler(ctx)
	loop := newTestLoop(source, act, WithScheduler(scheduler))

	scheduler.RingNow(nil)

	event := loop.Tick(ctx, at(t, "2024-03-21 09:00:00"))
	require.NotNil(t, event)
	require.Equal(t, []Reason{ReasonImmediate, ReasonConsole, ReasonTimetable}, event.Reasons)
	require.Equal(t, 1, act.count())
	require.Equal(t, int64(1), loop.Fires())
	require.Equal(t, StateIdle, loop.State())

	// Requests are consumed.
	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-21 09:00:01")))
}

// TestLoop_SnapshotFailureKeepsLastGood verifies reload failures do not drop the schedule.
func TestLoop_SnapshotFailureKeepsLastGood(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	act := new(countingActuator)
	source := &fakeSource{schedule: scheduleOf(t, "0,15-08-2024")}
	loop := newTestLoop(source, act)

	require.Nil(t, loop.Tick(ctx, at(t, "2024-08-15 08:00:00")))

	source.set(nil, &store.IOError{Op: "read", Path: "final.txt", Err: errors.New("permission denied")})
	require.Nil(t, loop.Tick(ctx, at(t, "2024-08-15 09:00:00")))

	// A snapshot that disappears after loading is a failure too; the holiday holds.
	source.set(nil, fmt.Errorf("%w: final.txt", store.ErrNotFound))
	require.Nil(t, loop.Tick(ctx, at(t, "2024-08-15 09:55:00")))

	require.Zero(t, act.count())
}

// TestLoop_SnapshotNeverPublished verifies only the timetable applies until a snapshot exists.
func TestLoop_SnapshotNeverPublished(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	act := new(countingActuator)
	source := new(fakeSource)
	source.set(nil, fmt.Errorf("%w: final.txt", store.ErrNotFound))
	loop := newTestLoop(source, act)

	require.NotNil(t, loop.Tick(ctx, at(t, "2024-08-15 09:00:00")))
	require.Equal(t, 1, act.count())
}

// TestLoop_SundayExam verifies exam slots ring on a Sunday while the timetable stays silent.
func TestLoop_SundayExam(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	act := new(countingActuator)
	loop := newTestLoop(&fakeSource{schedule: scheduleOf(t, "1,1,24-03-2024,10:00:00")}, act)

	require.Nil(t, loop.Tick(ctx, at(t, "2024-03-24 09:00:00")))

	event := loop.Tick(ctx, at(t, "2024-03-24 10:00:00"))
	require.NotNil(t, event)
	require.Equal(t, []Reason{ReasonExam}, event.Reasons)
	require.Equal(t, 1, act.count())
}

// TestReasonNames verifies reasons are logged by name.
func TestReasonNames(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"console", "timetable"}, reasonNames([]Reason{ReasonConsole, ReasonTimetable}))
}

// TestLoop_Run verifies the ticker drives ticks until cancellation.
func TestLoop_Run(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		act    = new(countingActuator)
		loop   = newTestLoop(&fakeSource{immediate: true}, act, WithTimetable(bell.WeeklyTimetable{}))
		ticked = make(chan struct{}, 1)
		done   = make(chan struct{})
	)

	go func() {
		loop.Run(ctx, 10*time.Millisecond, func() {
			select {
			case ticked <- struct{}{}:
			default:
			}
		})
		close(done)
	}()

	<-ticked
	cancel()
	<-done

	require.Equal(t, 1, act.count())
}
