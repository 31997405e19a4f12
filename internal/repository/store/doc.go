// Package store implements the shared file storage of the bell pipeline.
//
// The intake log, the Normalized Snapshot, the immediate-ring flag and the
// reports live in one data directory behind a billy.Filesystem. Every file
// that other processes read is published by writing a temp file and renaming
// it over the target, so readers see either the previous or the new contents.
package store
