package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a file does not exist yet.
var ErrNotFound = errors.New("file not found")

// IOError describes a failed storage operation.
type IOError struct {
	// Op is the operation that failed, e.g. "read" or "publish".
	Op string
	// Path is the file the operation targeted.
	Path string
	// Err is the underlying cause.
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func ioError(op, path string, err error) error {
	return &IOError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
