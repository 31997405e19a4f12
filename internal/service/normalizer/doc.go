// Package normalizer folds the intake log into the Normalized Snapshot.
//
// Every pass rebuilds the schedule from scratch: malformed lines are journaled
// and dropped, holidays win over exams on the same date, and the last writer
// wins per exam slot. Immediate-ring lines never reach the snapshot; they
// raise a flag the trigger loop claims.
package normalizer
