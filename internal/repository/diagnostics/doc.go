// Package diagnostics implements the SQLite journal of dropped intake lines
// and storage failures.
//
// Entries keep the raw line and the reason, so an operator can list them
// with bellctl and resubmit corrected records.
package diagnostics
