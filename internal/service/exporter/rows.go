package exporter

import (
	"strings"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

// NoRinging is the timings text of a holiday row.
const NoRinging = "No bell ringing"

// Row is one report line: a holiday date or one exam slot of a date.
type Row struct {
	// Kind is KindHoliday, KindMidSem or KindEndSem.
	Kind bell.Kind
	// Date the row applies to.
	Date bell.Date
	// Slot is the exam slot, zero for holidays.
	Slot int
	// Timings are the ring instants of the slot, empty for holidays.
	Timings []bell.TimeOfDay
}

// TimingsText renders the timings as "HH:MM:SS, HH:MM:SS" or NoRinging.
func (r Row) TimingsText() string {
	if len(r.Timings) == 0 {
		return NoRinging
	}

	parts := make([]string, 0, len(r.Timings))
	for _, t := range r.Timings {
		parts = append(parts, t.String())
	}

	return strings.Join(parts, ", ")
}

// Rows projects the schedule into rows sorted by date and then by slot.
func Rows(schedule bell.Schedule, offsets bell.OffsetTable) []Row {
	rows := make([]Row, 0, len(schedule))

	for _, date := range schedule.Dates() {
		switch entry := schedule.Entry(date).(type) {
		case bell.Holiday:
			rows = append(rows, Row{
				Kind: bell.KindHoliday,
				Date: date,
			})
		case bell.SlotSchedule:
			for _, slot := range entry.Slots() {
				event := entry[slot]
				rows = append(rows, Row{
					Kind:    event.Kind,
					Date:    date,
					Slot:    slot,
					Timings: offsets.Expand(event.Kind, slot, event.BaseTime),
				})
			}
		}
	}

	return rows
}
