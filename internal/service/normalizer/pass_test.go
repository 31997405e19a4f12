package normalizer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/repository/diagnostics"
	"github.com/oshokin/bell-scheduler/internal/repository/store"
)

// memoryJournal is an in-memory diagnostics.Journal used in tests.
type memoryJournal struct {
	mu      sync.Mutex
	entries []diagnostics.Entry
}

func (j *memoryJournal) Record(_ context.Context, entry diagnostics.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, entry)

	return nil
}

func (j *memoryJournal) Recent(context.Context, int) ([]diagnostics.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	return append([]diagnostics.Entry(nil), j.entries...), nil
}

func (j *memoryJournal) Close() error { return nil }

func newTestNormalizer(t *testing.T) (*Normalizer, *store.Store, *memoryJournal) {
	t.Helper()

	st := store.New(memfs.New(), store.Files{
		Intake:    "input.txt",
		Snapshot:  "final.txt",
		Immediate: "immediate.flag",
	})
	journal := new(memoryJournal)
	stamp := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	n := New(st, journal,
		WithReports("bell_events.csv", "bell_events.ics"),
		WithClock(func() time.Time { return stamp }),
	)

	return n, st, journal
}

func readString(t *testing.T, st *store.Store, name string) string {
	t.Helper()

	data, err := st.ReadFile(context.Background(), name)
	require.NoError(t, err)

	return string(data)
}

// TestPass_Scenario runs the full pass over a mixed intake log.
func TestPass_Scenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n, st, journal := newTestNormalizer(t)

	require.NoError(t, st.AppendIntake(ctx,
		"1,1,15-08-2024,09:00:00",
		"0,15-08-2024",
		"1,abc,20-03-2024",
		"1,2,20-03-2024,10:00:00",
		"3,09:00:00",
	))

	stats, err := n.Pass(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, stats.Lines)
	require.Equal(t, 1, stats.Dropped)
	require.Equal(t, 1, stats.Consumed)
	require.Equal(t, 1, stats.Conflicts)
	require.Equal(t, 2, stats.Dates)
	require.True(t, stats.SnapshotChanged)
	require.True(t, stats.Immediate)

	require.Equal(t, "1,2,20-03-2024,10:00:00\n0,15-08-2024\n", readString(t, st, "final.txt"))

	// Malformed and immediate lines are gone; the rest keeps its order.
	intake, err := st.ReadIntake(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"1,1,15-08-2024,09:00:00", "0,15-08-2024", "1,2,20-03-2024,10:00:00"}, intake.Lines)

	// The malformed line is journaled with its position.
	entries, err := journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, diagnostics.CategoryParse, entries[0].Category)
	require.Equal(t, 3, entries[0].Line)
	require.Equal(t, "1,abc,20-03-2024", entries[0].Raw)

	base, ok, err := st.TakeImmediate(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bell.NewTimeOfDay(9, 0, 0), base)

	csvReport := readString(t, st, "bell_events.csv")
	require.True(t, strings.HasPrefix(csvReport, "Type,Date,Timings\n"))
	require.Contains(t, csvReport, "Holiday,15-08-2024,No bell ringing")
	require.Contains(t, readString(t, st, "bell_events.ics"), "BEGIN:VCALENDAR")
}

// TestPass_Idempotent verifies a second pass over the same log changes nothing.
func TestPass_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n, st, _ := newTestNormalizer(t)

	require.NoError(t, st.AppendIntake(ctx, "0,15-08-2024", "2,1,21-03-2024,09:30:00"))

	_, err := n.Pass(ctx)
	require.NoError(t, err)

	snapshot := readString(t, st, "final.txt")
	csvReport := readString(t, st, "bell_events.csv")
	icsReport := readString(t, st, "bell_events.ics")

	stats, err := n.Pass(ctx)
	require.NoError(t, err)
	require.False(t, stats.SnapshotChanged)
	require.False(t, stats.Immediate)

	require.Equal(t, snapshot, readString(t, st, "final.txt"))
	require.Equal(t, csvReport, readString(t, st, "bell_events.csv"))
	require.Equal(t, icsReport, readString(t, st, "bell_events.ics"))

	// Byte-identical output from a fresh normalizer as well.
	fresh := New(st, nil,
		WithReports("bell_events.csv", "bell_events.ics"),
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }),
	)

	_, err = fresh.Pass(ctx)
	require.NoError(t, err)
	require.Equal(t, icsReport, readString(t, st, "bell_events.ics"))
}

// TestPass_ReportsStableAcrossRestarts verifies a new process rewrites identical reports.
func TestPass_ReportsStableAcrossRestarts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.New(memfs.New(), store.Files{Intake: "input.txt", Snapshot: "final.txt", Immediate: "immediate.flag"})

	require.NoError(t, st.AppendIntake(ctx, "0,15-08-2024", "2,1,21-03-2024,09:30:00"))

	_, err := New(st, nil, WithReports("", "bell_events.ics")).Pass(ctx)
	require.NoError(t, err)

	icsReport := readString(t, st, "bell_events.ics")
	require.Contains(t, icsReport, "DTSTAMP:20240815T000000Z")

	_, err = New(st, nil, WithReports("", "bell_events.ics")).Pass(ctx)
	require.NoError(t, err)
	require.Equal(t, icsReport, readString(t, st, "bell_events.ics"))
}

// failingCompaction fails CompactIntake a set number of times.
type failingCompaction struct {
	*store.Store

	mu       sync.Mutex
	failures int
}

func (f *failingCompaction) CompactIntake(ctx context.Context, read *store.Intake, keep []string) (int, error) {
	f.mu.Lock()
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	if fail {
		return 0, &store.IOError{Op: "publish", Path: "input.txt", Err: errors.New("disk busy")}
	}

	return f.Store.CompactIntake(ctx, read, keep)
}

// TestPass_ImmediateRingsOnceWhenCompactionFails verifies the flag is raised only after the line is consumed.
func TestPass_ImmediateRingsOnceWhenCompactionFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := store.New(memfs.New(), store.Files{Intake: "input.txt", Snapshot: "final.txt", Immediate: "immediate.flag"})
	storage := &failingCompaction{Store: st, failures: 1}
	n := New(storage, nil)

	require.NoError(t, st.AppendIntake(ctx, "3,09:00:00"))

	_, err := n.Pass(ctx)
	require.Error(t, err)

	_, raised, err := st.TakeImmediate(ctx)
	require.NoError(t, err)
	require.False(t, raised)

	stats, err := n.Pass(ctx)
	require.NoError(t, err)
	require.True(t, stats.Immediate)

	_, raised, err = st.TakeImmediate(ctx)
	require.NoError(t, err)
	require.True(t, raised)

	// The line is gone, so later passes raise nothing.
	stats, err = n.Pass(ctx)
	require.NoError(t, err)
	require.False(t, stats.Immediate)

	_, raised, err = st.TakeImmediate(ctx)
	require.NoError(t, err)
	require.False(t, raised)
}

// TestPass_EmptyLog verifies a missing log publishes an empty snapshot.
func TestPass_EmptyLog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n, st, _ := newTestNormalizer(t)

	stats, err := n.Pass(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.Lines)

	schedule, err := st.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Empty(t, schedule)

	require.Equal(t, "Type,Date,Timings\n", readString(t, st, "bell_events.csv"))
}
