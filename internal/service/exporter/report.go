package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

const (
	// productID identifies the iCalendar producer.
	productID = "-//oshokin//bell-scheduler//EN"
	// floatingLayout renders a local date-time without a zone.
	floatingLayout = "20060102T150405"
	// uidDomain suffixes event UIDs.
	uidDomain = "bell-scheduler"
)

// csvHeader is the first line of the CSV report.
var csvHeader = []string{"Type", "Date", "Timings"}

// ErrSourceUnavailable is returned when the snapshot cannot be read.
var ErrSourceUnavailable = errors.New("snapshot source unavailable")

// Source provides the Normalized Snapshot.
type Source interface {
	LoadSnapshot(ctx context.Context) (bell.Schedule, error)
}

// Reports are the rendered report files.
type Reports struct {
	CSV []byte
	ICS []byte
}

// Load reads the snapshot from source.
func Load(ctx context.Context, source Source) (bell.Schedule, error) {
	if source == nil {
		return nil, ErrSourceUnavailable
	}

	schedule, err := source.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	return schedule, nil
}

// WriteCSV writes rows as Type,Date,Timings.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{row.Kind.String(), row.Date.String(), row.TimingsText()}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// BuildICS renders rows as an iCalendar feed.
// Holidays become all-day events; every ring instant becomes a floating
// local-time event lasting ringDuration.
func BuildICS(rows []Row, ringDuration time.Duration, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendarFor(uidDomain)
	cal.SetProductId(productID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName("Bell schedule")

	for _, row := range rows {
		day := row.Date.Time()

		if row.Kind == bell.KindHoliday {
			event := cal.AddEvent(fmt.Sprintf("%s-holiday@%s", day.Format("20060102"), uidDomain))
			event.SetDtStampTime(stamp)
			event.SetSummary("Holiday")
			event.SetDescription(NoRinging)
			event.SetAllDayStartAt(day)
			event.SetAllDayEndAt(day.AddDate(0, 0, 1))

			continue
		}

		for _, instant := range row.Timings {
			start := instant.On(row.Date, time.UTC)
			end := start.Add(ringDuration)

			event := cal.AddEvent(fmt.Sprintf("%s-s%d@%s", start.Format(floatingLayout), row.Slot, uidDomain))
			event.SetDtStampTime(stamp)
			event.SetSummary(fmt.Sprintf("%s slot %d bell", row.Kind, row.Slot))
			event.SetDescription(row.TimingsText())
			event.SetProperty(ics.ComponentPropertyDtStart, start.Format(floatingLayout))
			event.SetProperty(ics.ComponentPropertyDtEnd, end.Format(floatingLayout))
		}
	}

	return cal
}

// StampOf returns the DTSTAMP used for a schedule: midnight of its latest date,
// or the Unix epoch for an empty schedule. Equal schedules get equal stamps.
func StampOf(schedule bell.Schedule) time.Time {
	dates := schedule.Dates()
	if len(dates) == 0 {
		return time.Unix(0, 0).UTC()
	}

	return dates[len(dates)-1].Time()
}

// Render produces both reports for the schedule.
func Render(schedule bell.Schedule, offsets bell.OffsetTable, ringDuration time.Duration, stamp time.Time) (*Reports, error) {
	rows := Rows(schedule, offsets)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}

	return &Reports{
		CSV: buf.Bytes(),
		ICS: []byte(BuildICS(rows, ringDuration, stamp).Serialize()),
	}, nil
}
