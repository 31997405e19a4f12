package normalizer

import (
	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

// Result is the outcome of folding a record sequence.
type Result struct {
	// Schedule is the resolved per-date map.
	Schedule bell.Schedule
	// Immediate is the base time of the last immediate ring, if any.
	Immediate *bell.TimeOfDay
	// Conflicts counts exam entries suppressed by a holiday.
	Conflicts int
}

// Fold applies records in order to an empty schedule.
func Fold(records []bell.Record) *Result {
	result := &Result{
		Schedule: make(bell.Schedule),
	}

	for _, record := range records {
		if record.Kind == bell.KindImmediateRing {
			baseTime := record.BaseTime
			result.Immediate = &baseTime

			continue
		}

		result.Conflicts += result.Schedule.Apply(record)
	}

	return result
}
