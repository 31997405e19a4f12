package bell

import (
	"fmt"
	"strconv"

	"github.com/teambition/rrule-go"
)

// Kind identifies the type of an intake record.
type Kind int

const (
	// KindHoliday suppresses every bell on the covered dates.
	KindHoliday Kind = 0
	// KindMidSem schedules a mid-semester exam slot.
	KindMidSem Kind = 1
	// KindEndSem schedules an end-semester exam slot.
	KindEndSem Kind = 2
	// KindImmediateRing requests a one-shot ring on the next tick.
	KindImmediateRing Kind = 3
)

const (
	// MinSlot is the lowest exam slot number.
	MinSlot = 1
	// MaxSlot is the highest exam slot number.
	MaxSlot = 3
)

// String returns the report label of the kind.
func (k Kind) String() string {
	switch k {
	case KindHoliday:
		return "Holiday"
	case KindMidSem:
		return "Midsem"
	case KindEndSem:
		return "Endsem"
	case KindImmediateRing:
		return "Immediate"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// IsExam reports whether the kind schedules exam slots.
func (k Kind) IsExam() bool {
	return k == KindMidSem || k == KindEndSem
}

// Record is one parsed intake line. Records are immutable once parsed.
type Record struct {
	// Kind is the record type.
	Kind Kind
	// Slot is the exam slot (1..3); zero for holidays and immediate rings.
	Slot int
	// Start is the first covered date; zero for immediate rings.
	Start Date
	// End is the last covered date (inclusive); equal to Start for single dates.
	End Date
	// BaseTime is the exam start or the requested immediate ring time.
	BaseTime TimeOfDay
	// Raw is the trimmed source line.
	Raw string
}

// IsRange reports whether the record covers more than one date.
func (r Record) IsRange() bool {
	return r.End != r.Start
}

// Dates expands the record's inclusive date range into one entry per calendar day.
func (r Record) Dates() []Date {
	if r.Kind == KindImmediateRing || r.Start.IsZero() {
		return nil
	}

	if !r.IsRange() {
		return []Date{r.Start}
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: r.Start.Time(),
		Until:   r.End.Time(),
	})
	if err != nil {
		return nil
	}

	occurrences := rule.All()
	dates := make([]Date, 0, len(occurrences))

	for _, occurrence := range occurrences {
		dates = append(dates, DateOf(occurrence))
	}

	return dates
}

// FormatRecord renders the canonical intake line of a record.
func FormatRecord(r Record) string {
	switch {
	case r.Kind == KindImmediateRing:
		return fmt.Sprintf("%d,%s", r.Kind, r.BaseTime)
	case r.Kind.IsExam() && r.IsRange():
		return fmt.Sprintf("%d,%d,%s,%s,%s", r.Kind, r.Slot, r.Start, r.End, r.BaseTime)
	case r.Kind.IsExam():
		return fmt.Sprintf("%d,%d,%s,%s", r.Kind, r.Slot, r.Start, r.BaseTime)
	case r.IsRange():
		return fmt.Sprintf("%d,%s,%s", r.Kind, r.Start, r.End)
	default:
		return fmt.Sprintf("%d,%s", r.Kind, r.Start)
	}
}
