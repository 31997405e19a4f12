package store

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	return New(memfs.New(), Files{
		Intake:    "input.txt",
		Snapshot:  "final.txt",
		Immediate: "immediate.flag",
	})
}

// TestStore_ReadIntake_Missing verifies a missing intake log reads as empty.
func TestStore_ReadIntake_Missing(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	intake, err := s.ReadIntake(context.Background())
	require.NoError(t, err)
	require.Empty(t, intake.Lines)
}

// TestStore_AppendIntake ensures appended lines are read back in order without blanks.
func TestStore_AppendIntake(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.AppendIntake(ctx, "0,15-08-2024", "  1,2,20-03-2024,10:00:00 "))
	require.NoError(t, s.AppendIntake(ctx))
	require.NoError(t, s.AppendIntake(ctx, "3,09:00:00"))

	intake, err := s.ReadIntake(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"0,15-08-2024", "1,2,20-03-2024,10:00:00", "3,09:00:00"}, intake.Lines)
}

// TestStore_CompactIntake_CarriesTail ensures lines appended after the read survive compaction.
func TestStore_CompactIntake_CarriesTail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.AppendIntake(ctx, "0,15-08-2024", "garbage", "3,09:00:00"))

	read, err := s.ReadIntake(ctx)
	require.NoError(t, err)

	// A concurrent writer appends while the pass is running.
	require.NoError(t, s.AppendIntake(ctx, "0,16-08-2024"))

	carried, err := s.CompactIntake(ctx, read, []string{"0,15-08-2024"})
	require.NoError(t, err)
	require.Equal(t, 1, carried)

	after, err := s.ReadIntake(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"0,15-08-2024", "0,16-08-2024"}, after.Lines)
}

// TestStore_CompactIntake_Replaced keeps the current log when it no longer extends what was read.
func TestStore_CompactIntake_Replaced(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.AppendIntake(ctx, "0,15-08-2024"))

	read, err := s.ReadIntake(ctx)
	require.NoError(t, err)

	require.NoError(t, util.WriteFile(s.Filesystem(), "input.txt", []byte("0,01-01-2025\n"), filePermissions))

	_, err = s.CompactIntake(ctx, read, []string{"0,15-08-2024"})
	require.NoError(t, err)

	after, err := s.ReadIntake(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"0,15-08-2024", "0,01-01-2025"}, after.Lines)
}

// TestStore_Snapshot_Roundtrip ensures a published snapshot loads back and republishing is a no-op.
func TestStore_Snapshot_Roundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.LoadSnapshot(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	schedule := make(bell.Schedule)
	schedule.Apply(mustRecord(t, "0,15-08-2024"))
	schedule.Apply(mustRecord(t, "1,2,20-03-2024,10:00:00"))

	changed, err := s.PublishSnapshot(ctx, schedule)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = s.PublishSnapshot(ctx, schedule)
	require.NoError(t, err)
	require.False(t, changed)

	loaded, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, schedule, loaded)

	data, err := s.ReadFile(ctx, "final.txt")
	require.NoError(t, err)
	require.Equal(t, "1,2,20-03-2024,10:00:00\n0,15-08-2024\n", string(data))
}

// TestStore_LoadSnapshot_Corrupt verifies a corrupt snapshot is an IOError.
func TestStore_LoadSnapshot_Corrupt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.PublishFile(ctx, "final.txt", []byte("1,abc,20-03-2024\n")))

	_, err := s.LoadSnapshot(ctx)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	require.Equal(t, "decode", ioErr.Op)
	require.ErrorIs(t, err, bell.ErrMalformed)
}

// TestStore_Immediate ensures a raised flag is taken exactly once.
func TestStore_Immediate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.TakeImmediate(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	base, err := bell.ParseTimeOfDay("09:00:00")
	require.NoError(t, err)
	require.NoError(t, s.RaiseImmediate(ctx, base))

	got, ok, err := s.TakeImmediate(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, base, got)

	_, ok, err = s.TakeImmediate(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestStore_Immediate_StaleClaim verifies a claim left by a crashed taker still rings.
func TestStore_Immediate_StaleClaim(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, util.WriteFile(s.Filesystem(), "immediate.flag"+claimSuffix, []byte("garbage"), filePermissions))

	got, ok, err := s.TakeImmediate(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bell.TimeOfDay(0), got)
}

// TestStore_Truncate clears intake, snapshot and flag.
func TestStore_Truncate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.AppendIntake(ctx, "0,15-08-2024"))
	require.NoError(t, s.RaiseImmediate(ctx, 0))
	require.NoError(t, s.Truncate(ctx))

	intake, err := s.ReadIntake(ctx)
	require.NoError(t, err)
	require.Empty(t, intake.Lines)

	schedule, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Empty(t, schedule)

	_, ok, err := s.TakeImmediate(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func mustRecord(t *testing.T, line string) bell.Record {
	t.Helper()

	record, err := bell.ParseRecord(line)
	require.NoError(t, err)

	return record
}
