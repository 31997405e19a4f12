package exporter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

type fakeSource struct {
	schedule bell.Schedule
	err      error
}

func (f *fakeSource) LoadSnapshot(context.Context) (bell.Schedule, error) {
	return f.schedule, f.err
}

func buildSchedule(t *testing.T, lines ...string) bell.Schedule {
	t.Helper()

	schedule := make(bell.Schedule)

	for _, line := range lines {
		record, err := bell.ParseRecord(line)
		require.NoError(t, err)
		schedule.Apply(record)
	}

	return schedule
}

// TestRows verifies ordering, holiday rows and expanded timings.
func TestRows(t *testing.T) {
	t.Parallel()

	schedule := buildSchedule(t,
		"0,15-08-2024",
		"2,3,20-03-2024,14:00:00",
		"1,1,20-03-2024,09:00:00",
	)

	rows := Rows(schedule, bell.DefaultOffsets())
	require.Len(t, rows, 3)

	require.Equal(t, bell.KindMidSem, rows[0].Kind)
	require.Equal(t, 1, rows[0].Slot)
	require.Equal(t, "09:00:00, 09:05:00, 09:15:00, 11:05:00, 11:15:00", rows[0].TimingsText())

	require.Equal(t, bell.KindEndSem, rows[1].Kind)
	require.Equal(t, 3, rows[1].Slot)
	require.Equal(t, "14:00:00, 14:05:00, 14:15:00, 17:05:00, 17:15:00", rows[1].TimingsText())

	require.Equal(t, bell.KindHoliday, rows[2].Kind)
	require.Equal(t, NoRinging, rows[2].TimingsText())
}

// TestWriteCSV checks the header and row rendering.
func TestWriteCSV(t *testing.T) {
	t.Parallel()

	schedule := buildSchedule(t, "0,15-08-2024", "1,2,20-03-2024,10:00:00")

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Rows(schedule, bell.DefaultOffsets())))

	want := strings.Join([]string{
		"Type,Date,Timings",
		`Midsem,20-03-2024,"10:00:00, 10:05:00, 10:15:00, 12:05:00, 12:15:00"`,
		"Holiday,15-08-2024,No bell ringing",
		"",
	}, "\n")
	require.Equal(t, want, buf.String())
}

// TestBuildICS ensures the feed parses back with one event per ring and per holiday.
func TestBuildICS(t *testing.T) {
	t.Parallel()

	schedule := buildSchedule(t, "0,15-08-2024", "1,2,20-03-2024,10:00:00")
	stamp := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	cal := BuildICS(Rows(schedule, bell.DefaultOffsets()), 3*time.Second, stamp)

	parsed, err := ics.ParseCalendar(strings.NewReader(cal.Serialize()))
	require.NoError(t, err)

	events := parsed.Events()
	require.Len(t, events, 6)

	first := events[0]
	require.Equal(t, "20240320T100000-s2@bell-scheduler", first.Id())
	require.Equal(t, "20240320T100000", first.GetProperty(ics.ComponentPropertyDtStart).Value)
	require.Equal(t, "20240320T100003", first.GetProperty(ics.ComponentPropertyDtEnd).Value)

	holiday := events[5]
	require.Equal(t, "20240815-holiday@bell-scheduler", holiday.Id())
	require.Equal(t, "20240815", holiday.GetProperty(ics.ComponentPropertyDtStart).Value)
}

// TestRender_Idempotent verifies identical input renders byte-identical reports.
func TestRender_Idempotent(t *testing.T) {
	t.Parallel()

	schedule := buildSchedule(t, "0,15-08-2024", "2,1,21-03-2024,09:30:00")
	stamp := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := Render(schedule, bell.DefaultOffsets(), time.Second, stamp)
	require.NoError(t, err)

	second, err := Render(schedule.Clone(), bell.DefaultOffsets(), time.Second, stamp)
	require.NoError(t, err)

	require.Equal(t, first.CSV, second.CSV)
	require.Equal(t, first.ICS, second.ICS)
}

// TestStampOf verifies the stamp depends only on the schedule content.
func TestStampOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, time.Unix(0, 0).UTC(), StampOf(make(bell.Schedule)))

	schedule := buildSchedule(t, "0,15-08-2024", "2,1,21-03-2024,09:30:00")
	require.Equal(t, time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), StampOf(schedule))
	require.Equal(t, StampOf(schedule), StampOf(schedule.Clone()))
}

// TestLoad verifies source failures are reported as ErrSourceUnavailable.
func TestLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := Load(ctx, nil)
	require.ErrorIs(t, err, ErrSourceUnavailable)

	cause := errors.New("permission denied")
	_, err = Load(ctx, &fakeSource{err: cause})
	require.ErrorIs(t, err, ErrSourceUnavailable)
	require.ErrorIs(t, err, cause)

	want := buildSchedule(t, "0,15-08-2024")
	got, err := Load(ctx, &fakeSource{schedule: want})
	require.NoError(t, err)
	require.Equal(t, want, got)
}
