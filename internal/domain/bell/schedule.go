package bell

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// DayEntry is the resolved schedule of one date: either Holiday or SlotSchedule.
// The set of variants is closed; a date can never be a holiday and carry slots.
type DayEntry interface {
	dayEntry()
}

// Holiday marks a date on which no bell rings at all.
type Holiday struct{}

func (Holiday) dayEntry() {}

// SlotEvent is the exam scheduled in one slot of a date.
type SlotEvent struct {
	// Kind is KindMidSem or KindEndSem.
	Kind Kind
	// BaseTime is the exam start the offsets are applied to.
	BaseTime TimeOfDay
}

// SlotSchedule maps exam slots (1..3) to their events for one date.
type SlotSchedule map[int]SlotEvent

func (SlotSchedule) dayEntry() {}

// Slots returns the slot numbers in ascending order.
func (s SlotSchedule) Slots() []int {
	return slices.Sorted(maps.Keys(s))
}

// Schedule is the canonical per-date map produced by folding intake records.
type Schedule map[Date]DayEntry

// errImmediateInSnapshot is returned when a snapshot carries an immediate ring line.
var errImmediateInSnapshot = errors.New("immediate ring records do not belong in a snapshot")

// Apply folds one record into the schedule and returns how many conflicts were
// resolved in favour of a holiday. Immediate rings are ignored.
//
//   - Holiday: the date becomes Holiday, discarding any slots already recorded.
//   - MidSem/EndSem: skipped when the date is a Holiday; otherwise the slot is
//     set, replacing an earlier value for the same slot.
func (s Schedule) Apply(r Record) int {
	conflicts := 0

	for _, date := range r.Dates() {
		current := s[date]

		switch {
		case r.Kind == KindHoliday:
			if slots, ok := current.(SlotSchedule); ok && len(slots) > 0 {
				conflicts++
			}

			s[date] = Holiday{}
		case r.Kind.IsExam():
			switch entry := current.(type) {
			case Holiday:
				conflicts++
			case SlotSchedule:
				entry[r.Slot] = SlotEvent{Kind: r.Kind, BaseTime: r.BaseTime}
			default:
				s[date] = SlotSchedule{r.Slot: {Kind: r.Kind, BaseTime: r.BaseTime}}
			}
		}
	}

	return conflicts
}

// Entry returns the entry for a date, or nil when the date has no exceptions.
func (s Schedule) Entry(d Date) DayEntry {
	return s[d]
}

// IsHoliday reports whether the date is a holiday.
func (s Schedule) IsHoliday(d Date) bool {
	_, ok := s[d].(Holiday)

	return ok
}

// Dates returns all dates in ascending order.
func (s Schedule) Dates() []Date {
	return slices.SortedFunc(maps.Keys(s), Date.Compare)
}

// Clone returns a deep copy of the schedule.
func (s Schedule) Clone() Schedule {
	cloned := make(Schedule, len(s))

	for date, entry := range s {
		if slots, ok := entry.(SlotSchedule); ok {
			cloned[date] = maps.Clone(slots)
			continue
		}

		cloned[date] = entry
	}

	return cloned
}

// EncodeSchedule renders the Normalized Snapshot: one line per holiday date or
// per exam slot, sorted by date and then by slot.
func EncodeSchedule(s Schedule) []byte {
	var buf bytes.Buffer

	for _, date := range s.Dates() {
		switch entry := s[date].(type) {
		case Holiday:
			buf.WriteString(FormatRecord(Record{Kind: KindHoliday, Start: date, End: date}))
			buf.WriteByte('\n')
		case SlotSchedule:
			for _, slot := range entry.Slots() {
				event := entry[slot]
				buf.WriteString(FormatRecord(Record{
					Kind:     event.Kind,
					Slot:     slot,
					Start:    date,
					End:      date,
					BaseTime: event.BaseTime,
				}))
				buf.WriteByte('\n')
			}
		}
	}

	return buf.Bytes()
}

// DecodeSchedule parses a Normalized Snapshot. Any malformed line fails the whole decode.
func DecodeSchedule(data []byte) (Schedule, error) {
	schedule := make(Schedule)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		record, err := ParseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d: %w", lineNumber, err)
		}

		if record.Kind == KindImmediateRing {
			return nil, fmt.Errorf("snapshot line %d: %w", lineNumber, errImmediateInSnapshot)
		}

		schedule.Apply(record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}

	return schedule, nil
}
