package bell

import (
	"errors"
	"time"
)

var (
	// ErrNothingStaged is returned when a console ring is confirmed before one was staged.
	ErrNothingStaged = errors.New("no ring is staged")
	// ErrInvalidDelay is returned for a non-positive ring delay.
	ErrInvalidDelay = errors.New("delay must be positive")
)

// Actor identifies who requested an operation.
type Actor struct {
	// Hostname is the machine the request came from.
	Hostname string
	// Username is the system user who sent it.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return "unknown"
	}

	return a.Username + "@" + a.Hostname
}

// ManualRing is a ring requested from the operator console.
type ManualRing struct {
	// ID identifies the ring in listings.
	ID string
	// Due is when the ring becomes due.
	Due time.Time
	// Requested is when the operator asked for it.
	Requested time.Time
	// Actor is who asked for it, if known.
	Actor *Actor
}

// Clone returns a copy that shares no references.
func (r ManualRing) Clone() ManualRing {
	r.Actor = r.Actor.Clone()

	return r
}
