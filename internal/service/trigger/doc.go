// Package trigger implements the bell trigger loop and the operator console scheduler.
//
// The loop evaluates one second-resolution instant per tick against the
// Normalized Snapshot, the weekly timetable, the immediate-ring flag and
// console rings that became due, and fires the actuator at most once per tick.
package trigger
