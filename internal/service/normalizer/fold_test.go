package normalizer

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

func mustRecords(t *testing.T, lines ...string) []bell.Record {
	t.Helper()

	records := make([]bell.Record, 0, len(lines))

	for _, line := range lines {
		record, err := bell.ParseRecord(line)
		require.NoError(t, err)

		records = append(records, record)
	}

	return records
}

// TestFold_HolidayWins verifies a holiday suppresses exams regardless of order.
func TestFold_HolidayWins(t *testing.T) {
	t.Parallel()

	date := bell.NewDate(2024, time.August, 15)

	before := Fold(mustRecords(t, "0,15-08-2024", "1,1,15-08-2024,09:00:00"))
	require.True(t, before.Schedule.IsHoliday(date))
	require.Equal(t, 1, before.Conflicts)

	after := Fold(mustRecords(t, "1,1,15-08-2024,09:00:00", "0,15-08-2024"))
	require.True(t, after.Schedule.IsHoliday(date))
	require.Equal(t, 1, after.Conflicts)
}

// TestFold_LastWriterWinsPerSlot verifies the latest exam in a slot replaces earlier ones.
func TestFold_LastWriterWinsPerSlot(t *testing.T) {
	t.Parallel()

	result := Fold(mustRecords(t,
		"1,2,20-03-2024,10:00:00",
		"2,2,20-03-2024,11:00:00",
		"1,1,20-03-2024,09:00:00",
	))

	slots, ok := result.Schedule.Entry(bell.NewDate(2024, time.March, 20)).(bell.SlotSchedule)
	require.True(t, ok)
	require.Equal(t, []int{1, 2}, slots.Slots())
	require.Equal(t, bell.SlotEvent{Kind: bell.KindEndSem, BaseTime: bell.NewTimeOfDay(11, 0, 0)}, slots[2])
	require.Zero(t, result.Conflicts)
}

// TestFold_Ranges verifies ranges expand inclusively.
func TestFold_Ranges(t *testing.T) {
	t.Parallel()

	result := Fold(mustRecords(t,
		"0,30-12-2024,02-01-2025",
		"2,3,01-01-2025,03-01-2025,14:00:00",
	))

	require.Len(t, result.Schedule, 5)
	require.True(t, result.Schedule.IsHoliday(bell.NewDate(2025, time.January, 2)))
	require.Equal(t, 2, result.Conflicts)

	slots, ok := result.Schedule.Entry(bell.NewDate(2025, time.January, 3)).(bell.SlotSchedule)
	require.True(t, ok)
	require.Contains(t, slots, 3)
}

// TestFold_Immediate verifies immediate rings stay out of the schedule and the last one wins.
func TestFold_Immediate(t *testing.T) {
	t.Parallel()

	result := Fold(mustRecords(t, "3,09:00:00", "0,15-08-2024", "3,10:30:00"))

	require.Len(t, result.Schedule, 1)
	require.NotNil(t, result.Immediate)
	require.Equal(t, bell.NewTimeOfDay(10, 30, 0), *result.Immediate)

	require.Nil(t, Fold(nil).Immediate)
}

// recordFrom derives a holiday or exam record from a seed; dates span ten days so conflicts are common.
func recordFrom(seed int64) bell.Record {
	var (
		r    = rand.New(rand.NewPCG(uint64(seed), 0)) //nolint:gosec // Deterministic test data.
		date = bell.NewDate(2024, time.March, 18).AddDays(r.IntN(10))
		kind = bell.Kind(r.IntN(3))
	)

	record := bell.Record{
		Kind:  kind,
		Start: date,
		End:   date,
	}

	if kind.IsExam() {
		record.Slot = bell.MinSlot + r.IntN(bell.MaxSlot)
		record.BaseTime = bell.NewTimeOfDay(8+r.IntN(8), 5*r.IntN(12), 0)
	}

	return record
}

func recordsFrom(seeds []int64) []bell.Record {
	records := make([]bell.Record, 0, len(seeds))
	for _, seed := range seeds {
		records = append(records, recordFrom(seed))
	}

	return records
}

// TestFold_Properties checks order independence of holidays and snapshot stability.
func TestFold_Properties(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("holiday dates are independent of record order", prop.ForAll(
		func(seeds []int64, shuffle int64) bool {
			records := recordsFrom(seeds)

			shuffled := append([]bell.Record(nil), records...)
			rand.New(rand.NewPCG(uint64(shuffle), 1)).Shuffle(len(shuffled), func(i, j int) { //nolint:gosec // Test data.
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})

			first := Fold(records).Schedule
			second := Fold(shuffled).Schedule

			for _, record := range records {
				if record.Kind != bell.KindHoliday {
					continue
				}

				if !first.IsHoliday(record.Start) || !second.IsHoliday(record.Start) {
					return false
				}
			}

			return len(first) == len(second)
		},
		gen.SliceOf(gen.Int64()),
		gen.Int64(),
	))

	properties.Property("folding a published snapshot reproduces it", prop.ForAll(
		func(seeds []int64) bool {
			snapshot := bell.EncodeSchedule(Fold(recordsFrom(seeds)).Schedule)

			decoded, err := bell.DecodeSchedule(snapshot)
			if err != nil {
				return false
			}

			return string(bell.EncodeSchedule(decoded)) == string(snapshot)
		},
		gen.SliceOf(gen.Int64()),
	))

	properties.TestingRun(t)
}
