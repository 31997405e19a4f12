package trigger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/logger"
	"github.com/oshokin/bell-scheduler/internal/repository/state"
)

// pendingRing is a scheduled ring and its timer.
type pendingRing struct {
	ring  bell.ManualRing
	timer *time.Timer
}

// Scheduler holds rings requested from the operator console.
// Each ring owns a timer; when it expires the ring becomes due and the
// trigger loop takes it on its next tick.
type Scheduler struct {
	mu      sync.Mutex
	staged  *time.Duration
	pending map[string]*pendingRing
	due     int
	// ctx scopes timer callback logs.
	ctx context.Context

	// repo, when set, receives the pending rings after every change.
	repo state.Repository
	// saveMu orders saves so the last one always reflects the latest change.
	saveMu sync.Mutex
}

// SchedulerOption customizes a Scheduler.
type SchedulerOption func(*Scheduler)

// WithRepository persists pending rings after every change.
func WithRepository(repo state.Repository) SchedulerOption {
	return func(s *Scheduler) {
		s.repo = repo
	}
}

// NewScheduler creates an empty scheduler.
func NewScheduler(ctx context.Context, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		pending: make(map[string]*pendingRing),
		ctx:     ctx,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Restore re-arms the rings saved by a previous process.
// Rings that fell due while no process was running are dropped.
func (s *Scheduler) Restore(ctx context.Context) (restored, dropped int, err error) {
	if s.repo == nil {
		return 0, 0, nil
	}

	rings, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return 0, 0, nil
		}

		return 0, 0, fmt.Errorf("load pending rings: %w", err)
	}

	now := time.Now()

	s.mu.Lock()

	for _, ring := range rings {
		delay := ring.Due.Sub(now)
		if delay <= 0 {
			dropped++

			logger.WarnKV(ctx, "Dropping console ring missed while stopped",
				"id", ring.ID,
				"due", ring.Due.Format(time.DateTime),
				"actor", ring.Actor.String(),
			)

			continue
		}

		s.armLocked(ring.Clone(), delay)
		restored++
	}

	s.mu.Unlock()

	if dropped > 0 {
		s.persist()
	}

	return restored, dropped, nil
}

// Stage drafts a ring delay to be confirmed later. A new draft replaces the previous one.
func (s *Scheduler) Stage(delay time.Duration) error {
	if delay <= 0 {
		return bell.ErrInvalidDelay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.staged = &delay

	return nil
}

// Staged returns the drafted delay, if any.
func (s *Scheduler) Staged() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staged == nil {
		return 0, false
	}

	return *s.staged, true
}

// Confirm schedules the staged ring.
func (s *Scheduler) Confirm(actor *bell.Actor) (bell.ManualRing, error) {
	s.mu.Lock()

	if s.staged == nil {
		s.mu.Unlock()

		return bell.ManualRing{}, bell.ErrNothingStaged
	}

	delay := *s.staged
	s.staged = nil
	ring := s.scheduleLocked(delay, actor)
	s.mu.Unlock()

	s.persist()

	return ring, nil
}

// Schedule arms a ring after delay.
func (s *Scheduler) Schedule(delay time.Duration, actor *bell.Actor) (bell.ManualRing, error) {
	if delay <= 0 {
		return bell.ManualRing{}, bell.ErrInvalidDelay
	}

	s.mu.Lock()
	ring := s.scheduleLocked(delay, actor)
	s.mu.Unlock()

	s.persist()

	return ring, nil
}

// RingNow makes a ring due immediately.
func (s *Scheduler) RingNow(actor *bell.Actor) bell.ManualRing {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.due++

	return bell.ManualRing{
		ID:        uuid.NewString(),
		Due:       now,
		Requested: now,
		Actor:     actor.Clone(),
	}
}

// Clear cancels pending rings and drops the draft. Rings that already became
// due are not affected. Returns the number of cancelled rings.
func (s *Scheduler) Clear() int {
	s.mu.Lock()
	defer s.persist()
	defer s.mu.Unlock()

	s.staged = nil
	cancelled := 0

	for id, pending := range s.pending {
		// A timer that already fired is about to mark its ring due.
		if !pending.timer.Stop() {
			continue
		}

		delete(s.pending, id)
		cancelled++
	}

	return cancelled
}

// Pending lists scheduled rings ordered by due time.
func (s *Scheduler) Pending() []bell.ManualRing {
	s.mu.Lock()
	defer s.mu.Unlock()

	rings := make([]bell.ManualRing, 0, len(s.pending))
	for _, pending := range s.pending {
		rings = append(rings, pending.ring.Clone())
	}

	slices.SortFunc(rings, func(a, b bell.ManualRing) int {
		if c := a.Due.Compare(b.Due); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	return rings
}

// TakeDue returns how many rings became due since the last call and resets the count.
func (s *Scheduler) TakeDue() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := s.due
	s.due = 0

	return due
}

func (s *Scheduler) scheduleLocked(delay time.Duration, actor *bell.Actor) bell.ManualRing {
	now := time.Now()
	ring := bell.ManualRing{
		ID:        uuid.NewString(),
		Due:       now.Add(delay),
		Requested: now,
		Actor:     actor.Clone(),
	}

	s.armLocked(ring, delay)

	logger.InfoKV(s.ctx, "Console ring scheduled", "id", ring.ID, "due", ring.Due.Format(time.TimeOnly), "actor", actor.String())

	return ring.Clone()
}

func (s *Scheduler) armLocked(ring bell.ManualRing, delay time.Duration) {
	s.pending[ring.ID] = &pendingRing{
		ring:  ring,
		timer: time.AfterFunc(delay, func() { s.expire(ring.ID) }),
	}
}

func (s *Scheduler) expire(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.due++
	s.mu.Unlock()

	logger.DebugKV(s.ctx, "Console ring due", "id", id)

	s.persist()
}

// persist saves the current pending rings. Must be called without mu held.
func (s *Scheduler) persist() {
	if s.repo == nil {
		return
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.repo.Save(s.ctx, s.Pending()); err != nil {
		logger.WarnKV(s.ctx, "Saving pending console rings failed", "error", err)
	}
}
