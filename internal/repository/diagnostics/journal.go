package diagnostics

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

// Category classifies a journal entry.
type Category string

const (
	// CategoryParse is an intake line dropped as malformed.
	CategoryParse Category = "parse"
	// CategoryIO is a failed storage operation.
	CategoryIO Category = "io"
)

// Entry is one journaled problem.
type Entry struct {
	ID       int64
	At       time.Time
	Source   string
	Category Category
	Line     int
	Raw      string
	Reason   string
}

// Journal records diagnostics entries.
type Journal interface {
	Record(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

const defaultBusyTimeout = 5 * time.Second

//go:embed schema.sql
var schema string

// ErrClosed is returned when the journal was closed.
var ErrClosed = errors.New("journal is closed")

// SQLiteJournal stores entries in a SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path.
func Open(ctx context.Context, path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// The normalizer and the trigger share the file; one writer per process.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", defaultBusyTimeout.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err = db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Record appends an entry. A zero At is replaced with the current time.
func (j *SQLiteJournal) Record(ctx context.Context, entry Entry) error {
	if j == nil || j.db == nil {
		return ErrClosed
	}

	if entry.At.IsZero() {
		entry.At = time.Now()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO entries(at, source, category, line, raw, reason) VALUES(?,?,?,?,?,?)`,
		entry.At.UTC().Format(time.RFC3339Nano), entry.Source, string(entry.Category),
		entry.Line, entry.Raw, entry.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}

	return nil
}

// Recent returns up to limit entries, newest first.
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if j == nil || j.db == nil {
		return nil, ErrClosed
	}

	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, at, source, category, line, raw, reason FROM entries ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			entry    Entry
			at       string
			category string
		)

		if err = rows.Scan(&entry.ID, &at, &entry.Source, &category, &entry.Line, &entry.Raw, &entry.Reason); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}

		entry.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parse journal time: %w", err)
		}

		entry.Category = Category(category)
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}

	return entries, nil
}

// Close releases the database.
func (j *SQLiteJournal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}

	err := j.db.Close()
	j.db = nil

	return err
}

// Discard is a Journal that drops everything.
type Discard struct{}

// Record implements Journal.
func (Discard) Record(context.Context, Entry) error { return nil }

// Recent implements Journal.
func (Discard) Recent(context.Context, int) ([]Entry, error) { return nil, nil }

// Close implements Journal.
func (Discard) Close() error { return nil }
