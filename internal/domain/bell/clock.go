package bell

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire layout of calendar dates (DD-MM-YYYY).
	DateLayout = "02-01-2006"
	// TimeLayout is the wire layout of times of day (HH:MM:SS).
	TimeLayout = "15:04:05"

	// secondsPerDay bounds TimeOfDay values.
	secondsPerDay = 24 * 60 * 60
)

// Date is a civil calendar date without a time or a location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalizing overflowing values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()

	return Date{
		Year:  year,
		Month: month,
		Day:   day,
	}
}

// ParseDate parses a DD-MM-YYYY token.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}

	return DateOf(t), nil
}

// Time returns midnight of the date in UTC.
// UTC is used only as a neutral container; dates carry no location.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Weekday returns the day of the week of the date.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	return d.Time().Compare(other.Time())
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String renders the date as DD-MM-YYYY.
func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// TimeOfDay is a wall-clock time with second resolution,
// stored as seconds since midnight in [0, 86400).
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay, wrapping values outside a single day.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return wrapSeconds(hour*3600 + minute*60 + second)
}

// TimeOfDayOf returns the wall-clock time of t truncated to the second.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// ParseTimeOfDay parses an HH:MM:SS token.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", s, err)
	}

	return TimeOfDayOf(t), nil
}

// Add returns t shifted by d, truncated to whole seconds and wrapped at midnight.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return wrapSeconds(int(t) + int(d/time.Second))
}

// On combines the time of day with a date into an instant in loc.
func (t TimeOfDay) On(d Date, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}

	return time.Date(d.Year, d.Month, d.Day, t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 3600 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }

// Second returns the second component.
func (t TimeOfDay) Second() int { return int(t) % 60 }

// String renders the time as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func wrapSeconds(s int) TimeOfDay {
	s %= secondsPerDay
	if s < 0 {
		s += secondsPerDay
	}

	return TimeOfDay(s)
}
