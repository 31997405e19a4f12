package trigger

import (
	"context"
	"time"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

// ConsoleService exposes the scheduler to the console transport.
type ConsoleService struct {
	scheduler *Scheduler
}

// NewConsoleService wraps the scheduler.
func NewConsoleService(scheduler *Scheduler) *ConsoleService {
	return &ConsoleService{scheduler: scheduler}
}

// RingNow makes a ring due on the next tick.
func (c *ConsoleService) RingNow(_ context.Context, actor *bell.Actor) bell.ManualRing {
	return c.scheduler.RingNow(actor)
}

// Stage drafts a ring delay.
func (c *ConsoleService) Stage(_ context.Context, delay time.Duration) error {
	return c.scheduler.Stage(delay)
}

// Confirm schedules the drafted ring.
func (c *ConsoleService) Confirm(_ context.Context, actor *bell.Actor) (bell.ManualRing, error) {
	return c.scheduler.Confirm(actor)
}

// Schedule arms a ring after delay.
func (c *ConsoleService) Schedule(_ context.Context, delay time.Duration, actor *bell.Actor) (bell.ManualRing, error) {
	return c.scheduler.Schedule(delay, actor)
}

// Clear cancels pending rings.
func (c *ConsoleService) Clear(_ context.Context) int {
	return c.scheduler.Clear()
}

// Pending returns the draft, zero when none, and the pending rings.
func (c *ConsoleService) Pending(_ context.Context) (time.Duration, []bell.ManualRing) {
	staged, _ := c.scheduler.Staged()

	return staged, c.scheduler.Pending()
}
