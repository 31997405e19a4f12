package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

// Files names the shared files relative to the data directory.
type Files struct {
	// Intake is the append-only intake log.
	Intake string
	// Snapshot is the Normalized Snapshot.
	Snapshot string
	// Immediate is the immediate-ring flag.
	Immediate string
}

const (
	// filePermissions is used for every file the store creates.
	filePermissions = 0o644
	// claimSuffix marks an immediate-ring flag taken by the trigger loop.
	claimSuffix = ".claimed"
	// tempPrefix prefixes temp files created while publishing.
	tempPrefix = ".bell-publish"
)

// Intake is the content of the intake log at the moment it was read.
type Intake struct {
	// Lines are the non-blank lines in file order.
	Lines []string
	// raw is the exact content that was read.
	raw []byte
}

// Store reads and publishes the shared files.
type Store struct {
	fs    billy.Filesystem
	files Files
	// mu serializes writers inside one process.
	mu sync.Mutex
}

// New creates a store over the provided filesystem.
func New(fs billy.Filesystem, files Files) *Store {
	return &Store{
		fs:    fs,
		files: files,
	}
}

// NewOS creates a store rooted at the data directory on disk.
func NewOS(dataDir string, files Files) *Store {
	return New(osfs.New(dataDir), files)
}

// Filesystem exposes the underlying filesystem.
func (s *Store) Filesystem() billy.Filesystem {
	return s.fs
}

// Files returns the file names used by the store.
func (s *Store) Files() Files {
	return s.files
}

// ReadIntake returns the current intake log. A missing log is empty.
func (s *Store) ReadIntake(_ context.Context) (*Intake, error) {
	data, err := s.readFile(s.files.Intake)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return new(Intake), nil
		}

		return nil, err
	}

	return &Intake{
		Lines: splitLines(data),
		raw:   data,
	}, nil
}

// AppendIntake appends lines to the intake log, creating it when needed.
func (s *Store) AppendIntake(_ context.Context, lines ...string) error {
	if len(lines) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(strings.TrimSpace(line))
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.fs.OpenFile(s.files.Intake, os.O_WRONLY|os.O_CREATE|os.O_APPEND, filePermissions)
	if err != nil {
		return ioError("open", s.files.Intake, err)
	}

	// One write per batch keeps concurrent appends from interleaving.
	if _, err = file.Write(buf.Bytes()); err != nil {
		_ = file.Close()

		return ioError("append", s.files.Intake, err)
	}

	if err = file.Close(); err != nil {
		return ioError("close", s.files.Intake, err)
	}

	return nil
}

// CompactIntake replaces the intake log with the kept lines.
// Anything appended after read was taken is carried over unchanged.
// Returns the number of carried-over lines.
func (s *Store) CompactIntake(_ context.Context, read *Intake, keep []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readFile(s.files.Intake)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	var tail []byte
	if bytes.HasPrefix(current, read.raw) {
		tail = current[len(read.raw):]
	} else {
		// The log was replaced behind our back; keep what is there now.
		tail = current
	}

	var buf bytes.Buffer
	for _, line := range keep {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	carried := splitLines(tail)
	for _, line := range carried {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if err = s.publish(s.files.Intake, buf.Bytes()); err != nil {
		return 0, err
	}

	return len(carried), nil
}

// LoadSnapshot reads and decodes the Normalized Snapshot.
// Returns ErrNotFound when no snapshot was published yet.
func (s *Store) LoadSnapshot(_ context.Context) (bell.Schedule, error) {
	data, err := s.readFile(s.files.Snapshot)
	if err != nil {
		return nil, err
	}

	schedule, err := bell.DecodeSchedule(data)
	if err != nil {
		return nil, ioError("decode", s.files.Snapshot, err)
	}

	return schedule, nil
}

// PublishSnapshot atomically replaces the Normalized Snapshot.
// Returns false when the published content is already identical.
func (s *Store) PublishSnapshot(_ context.Context, schedule bell.Schedule) (bool, error) {
	data := bell.EncodeSchedule(schedule)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readFile(s.files.Snapshot)
	if err == nil && bytes.Equal(current, data) {
		return false, nil
	}

	if err = s.publish(s.files.Snapshot, data); err != nil {
		return false, err
	}

	return true, nil
}

// RaiseImmediate publishes the immediate-ring flag carrying the requested base time.
func (s *Store) RaiseImmediate(_ context.Context, baseTime bell.TimeOfDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.publish(s.files.Immediate, []byte(baseTime.String()+"\n"))
}

// TakeImmediate claims the immediate-ring flag.
// The flag is renamed before it is read, so exactly one taker sees it.
// Returns false when no flag is raised.
func (s *Store) TakeImmediate(_ context.Context) (bell.TimeOfDay, bool, error) {
	claimed := s.files.Immediate + claimSuffix

	err := s.fs.Rename(s.files.Immediate, claimed)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, false, ioError("claim", s.files.Immediate, err)
	}

	// A claim left over from a crash is still a pending ring.
	data, readErr := s.readFile(claimed)
	if readErr != nil {
		if errors.Is(readErr, ErrNotFound) {
			return 0, false, nil
		}

		return 0, false, readErr
	}

	if err = s.fs.Remove(claimed); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, false, ioError("remove", claimed, err)
	}

	// An unreadable base time still rings.
	baseTime, _ := bell.ParseTimeOfDay(strings.TrimSpace(string(data)))

	return baseTime, true, nil
}

// ReadFile returns the contents of a file in the data directory.
func (s *Store) ReadFile(_ context.Context, name string) ([]byte, error) {
	return s.readFile(name)
}

// PublishFile atomically replaces a file in the data directory.
func (s *Store) PublishFile(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.publish(name, data)
}

// Truncate empties the intake log and the snapshot and drops a raised flag.
func (s *Store) Truncate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range []string{s.files.Intake, s.files.Snapshot} {
		if err := s.publish(name, nil); err != nil {
			return err
		}
	}

	if err := s.fs.Remove(s.files.Immediate); err != nil && !errors.Is(err, os.ErrNotExist) {
		return ioError("remove", s.files.Immediate, err)
	}

	return nil
}

func (s *Store) readFile(name string) ([]byte, error) {
	data, err := util.ReadFile(s.fs, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}

		return nil, ioError("read", name, err)
	}

	return data, nil
}

// publish writes data to a temp file next to name and renames it over name.
func (s *Store) publish(name string, data []byte) error {
	temp, err := s.fs.TempFile(filepath.Dir(name), tempPrefix)
	if err != nil {
		return ioError("create temp", name, err)
	}

	tempName := temp.Name()

	if _, err = io.Copy(temp, bytes.NewReader(data)); err != nil {
		_ = temp.Close()
		_ = s.fs.Remove(tempName)

		return ioError("write", tempName, err)
	}

	if err = temp.Close(); err != nil {
		_ = s.fs.Remove(tempName)

		return ioError("close", tempName, err)
	}

	if err = s.fs.Rename(tempName, name); err != nil {
		_ = s.fs.Remove(tempName)

		return ioError("publish", name, err)
	}

	return nil
}

func splitLines(data []byte) []string {
	var lines []string

	for line := range strings.Lines(string(data)) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lines = append(lines, line)
	}

	return lines
}
