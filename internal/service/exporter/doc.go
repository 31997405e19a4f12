// Package exporter projects a Normalized Snapshot into human-readable reports.
//
// Rows expands every exam slot with the same offset table the trigger loop
// uses, so the CSV and iCalendar reports list exactly the instants that ring.
package exporter
