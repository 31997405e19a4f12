package bell

import "errors"

// ErrInvalidSubmission is returned when a submission cannot be translated into intake lines.
var ErrInvalidSubmission = errors.New("invalid submission")

// Receipt acknowledges an accepted submission.
type Receipt struct {
	// ID identifies the submission in logs.
	ID string
	// Lines are the intake lines that were appended.
	Lines []string
}
