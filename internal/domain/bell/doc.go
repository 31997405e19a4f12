// Package bell contains the core domain types of the bell scheduler.
//
// It defines the calendar primitives (Date, TimeOfDay), intake records and
// their line codec, the per-date Schedule with its sealed DayEntry variants,
// the exam offset table and the weekly timetable. Everything here is pure
// and safe to share between the normalizer, the exporter and the trigger loop.
package bell
