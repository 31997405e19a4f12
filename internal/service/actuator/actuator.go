package actuator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/logger"
)

// Actuator rings the bell.
type Actuator interface {
	// Fire rings for duration and returns when the bell is off again.
	Fire(ctx context.Context, duration time.Duration) error
}

var (
	// ErrPinNotFound is returned when the configured GPIO does not exist.
	ErrPinNotFound = errors.New("gpio pin not found")
	// ErrUnknownDriver is returned for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown actuator driver")
)

// New builds the actuator selected in the configuration.
func New(cfg config.ActuatorConfig) (Actuator, error) {
	switch cfg.Driver {
	case config.DriverGPIO:
		return OpenRelay(cfg.Pin)
	case config.DriverLog, "":
		return new(LogDriver), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Relay drives a bell relay wired to a GPIO output.
type Relay struct {
	pin gpio.PinIO
	// mu keeps overlapping Fire calls from cutting each other short.
	mu sync.Mutex
}

// OpenRelay initializes the host drivers and opens the named pin, e.g. GPIO4.
func OpenRelay(name string) (*Relay, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}

	return NewRelay(pin)
}

// NewRelay wraps an already opened pin and drives it low.
func NewRelay(pin gpio.PinIO) (*Relay, error) {
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("set %s low: %w", pin.Name(), err)
	}

	return &Relay{pin: pin}, nil
}

// Fire energizes the relay for duration. Cancellation does not shorten a ring.
func (r *Relay) Fire(ctx context.Context, duration time.Duration) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err = r.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("set %s high: %w", r.pin.Name(), err)
	}

	defer func() {
		if lowErr := r.pin.Out(gpio.Low); lowErr != nil {
			err = errors.Join(err, fmt.Errorf("set %s low: %w", r.pin.Name(), lowErr))
		}
	}()

	logger.DebugKV(ctx, "Relay energized", "pin", r.pin.Name(), "duration", duration.String())

	time.Sleep(duration)

	return nil
}

// LogDriver only logs rings. It still blocks for the ring duration.
type LogDriver struct {
	mu    sync.Mutex
	rings int
}

// Fire logs the ring and waits for duration.
func (d *LogDriver) Fire(ctx context.Context, duration time.Duration) error {
	d.mu.Lock()
	d.rings++
	count := d.rings
	d.mu.Unlock()

	logger.InfoKV(ctx, "Bell ringing", "duration", duration.String(), "ring", count)

	time.Sleep(duration)

	return nil
}

// Rings returns how many times Fire was called.
func (d *LogDriver) Rings() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.rings
}
