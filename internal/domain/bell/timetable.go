package bell

import (
	"slices"
	"time"
)

// WeeklyTimetable holds the regular ring times used when a date has no exceptions.
type WeeklyTimetable struct {
	// Saturday lists the ring times of Saturdays.
	Saturday []TimeOfDay
	// Weekday lists the ring times of Monday through Friday.
	Weekday []TimeOfDay
}

// NewWeeklyTimetable builds a timetable with sorted, duplicate-free sets.
func NewWeeklyTimetable(saturday, weekday []TimeOfDay) WeeklyTimetable {
	return WeeklyTimetable{
		Saturday: sortedSet(saturday),
		Weekday:  sortedSet(weekday),
	}
}

// DefaultTimetable returns the built-in timetable: nine Saturday rings and
// fifteen Monday-to-Friday rings.
func DefaultTimetable() WeeklyTimetable {
	saturday := []TimeOfDay{
		NewTimeOfDay(8, 55, 0), NewTimeOfDay(9, 0, 0),
		NewTimeOfDay(9, 55, 0), NewTimeOfDay(10, 0, 0),
		NewTimeOfDay(10, 55, 0), NewTimeOfDay(11, 0, 0),
		NewTimeOfDay(11, 55, 0), NewTimeOfDay(12, 0, 0),
		NewTimeOfDay(12, 55, 0),
	}

	weekday := append(slices.Clone(saturday),
		NewTimeOfDay(13, 0, 0), NewTimeOfDay(13, 55, 0),
		NewTimeOfDay(14, 0, 0), NewTimeOfDay(14, 55, 0),
		NewTimeOfDay(15, 0, 0), NewTimeOfDay(15, 55, 0),
	)

	return NewWeeklyTimetable(saturday, weekday)
}

// For returns the ring times of a weekday. Sunday has none.
func (w WeeklyTimetable) For(day time.Weekday) []TimeOfDay {
	switch day {
	case time.Sunday:
		return nil
	case time.Saturday:
		return w.Saturday
	default:
		return w.Weekday
	}
}

// Matches reports whether t is a ring time on the given weekday.
func (w WeeklyTimetable) Matches(day time.Weekday, t TimeOfDay) bool {
	_, found := slices.BinarySearch(w.For(day), t)

	return found
}

func sortedSet(times []TimeOfDay) []TimeOfDay {
	out := slices.Clone(times)
	slices.Sort(out)

	return slices.Compact(out)
}
