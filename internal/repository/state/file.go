package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/bell-scheduler/internal/api/grpc/console"
	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

// Repository defines persistence operations for the pending console rings.
type Repository interface {
	Load(ctx context.Context) ([]bell.ManualRing, error)
	Save(ctx context.Context, rings []bell.ManualRing) error
}

// FileRepository persists the pending rings to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) in the same
// shape ListPending returns over the wire.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("state not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the pending rings from disk.
func (r *FileRepository) Load(_ context.Context) ([]bell.ManualRing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var message structpb.Struct
	if err = protojson.Unmarshal(contents, &message); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	pending, err := console.DecodePending(&message)
	if err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return pending.Rings, nil
}

// Save replaces the state file with the provided rings.
func (r *FileRepository) Save(_ context.Context, rings []bell.ManualRing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, err := console.EncodePending(console.Pending{Rings: rings})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	// Write to a temp file next to the target, then rename over it.
	temp, err := os.CreateTemp(filepath.Dir(r.path), ".console-state")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	tempName := temp.Name()

	if _, err = temp.Write(data); err == nil {
		err = temp.Chmod(config.DefaultFilePermissions)
	}

	if closeErr := temp.Close(); err == nil {
		err = closeErr
	}

	if err == nil {
		err = os.Rename(tempName, r.path)
	}

	if err != nil {
		_ = os.Remove(tempName)

		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}
