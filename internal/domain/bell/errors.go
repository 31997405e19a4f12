package bell

import (
	"errors"
	"fmt"
)

// ErrMalformed is matched by every ParseError.
var ErrMalformed = errors.New("malformed record")

// ParseError describes an intake line that could not be parsed.
type ParseError struct {
	// Line is the offending raw line.
	Line string
	// Reason is a short human-readable cause.
	Reason string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %q: %s: %v", e.Line, e.Reason, e.Err)
	}

	return fmt.Sprintf("parse %q: %s", e.Line, e.Reason)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match ErrMalformed.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(line, reason string, err error) *ParseError {
	return &ParseError{
		Line:   line,
		Reason: reason,
		Err:    err,
	}
}
