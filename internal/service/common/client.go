//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/bell-scheduler/internal/api/grpc/console"
	"github.com/oshokin/bell-scheduler/internal/api/grpc/intake"
	"github.com/oshokin/bell-scheduler/internal/api/grpc/transport"
	"github.com/oshokin/bell-scheduler/internal/config"
	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

// Client wraps the intake and console gRPC clients with convenience helpers.
// Each bell process serves one of them; dial the address of the one you need.
type Client struct {
	// conn is the underlying gRPC connection.
	conn *grpc.ClientConn
	// intake is the intake service client.
	intake *intake.IntakeServiceClient
	// console is the operator console client.
	console *console.ConsoleServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is attached to every call when set.
	actor *bell.Actor
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor identifies the caller on every request.
func WithActor(actor *bell.Actor) Option {
	return func(c *Client) {
		c.actor = actor.Clone()
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to a bell service.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial bell service: %w", err)
	}

	client := &Client{
		conn:        conn,
		intake:      intake.NewIntakeServiceClient(conn),
		console:     console.NewConsoleServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Submit sends a submission to the intake service.
func (c *Client) Submit(ctx context.Context, fields map[string]any) (*bell.Receipt, error) {
	request, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	reply, err := c.intake.Submit(callCtx, request)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	var (
		values  = reply.AsMap()
		receipt = new(bell.Receipt)
	)

	receipt.ID, _ = values["id"].(string)

	lines, _ := values["lines"].([]any)
	for _, line := range lines {
		if text, ok := line.(string); ok {
			receipt.Lines = append(receipt.Lines, text)
		}
	}

	return receipt, nil
}

// RingNow asks the trigger loop to ring on its next tick.
func (c *Client) RingNow(ctx context.Context) (bell.ManualRing, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	reply, err := c.console.RingNow(callCtx, new(emptypb.Empty))
	if err != nil {
		return bell.ManualRing{}, fmt.Errorf("ring now: %w", err)
	}

	return console.DecodeRing(reply)
}

// StageRing drafts a ring delay for ConfirmRing.
func (c *Client) StageRing(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return bell.ErrInvalidDelay
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.console.StageRing(callCtx, durationpb.New(delay)); err != nil {
		return fmt.Errorf("stage ring: %w", err)
	}

	return nil
}

// ConfirmRing schedules the staged ring.
func (c *Client) ConfirmRing(ctx context.Context) (bell.ManualRing, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	reply, err := c.console.ConfirmRing(callCtx, new(emptypb.Empty))
	if err != nil {
		return bell.ManualRing{}, fmt.Errorf("confirm ring: %w", err)
	}

	return console.DecodeRing(reply)
}

// ScheduleRing arms a ring after delay.
func (c *Client) ScheduleRing(ctx context.Context, delay time.Duration) (bell.ManualRing, error) {
	if delay <= 0 {
		return bell.ManualRing{}, bell.ErrInvalidDelay
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	reply, err := c.console.ScheduleRing(callCtx, durationpb.New(delay))
	if err != nil {
		return bell.ManualRing{}, fmt.Errorf("schedule ring: %w", err)
	}

	return console.DecodeRing(reply)
}

// ClearSchedule cancels pending console rings and returns how many were canceled.
func (c *Client) ClearSchedule(ctx context.Context) (int, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	reply, err := c.console.ClearSchedule(callCtx, new(emptypb.Empty))
	if err != nil {
		return 0, fmt.Errorf("clear schedule: %w", err)
	}

	return int(reply.GetValue()), nil
}

// ListPending returns the staged delay and the pending console rings.
func (c *Client) ListPending(ctx context.Context) (console.Pending, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	reply, err := c.console.ListPending(callCtx, new(emptypb.Empty))
	if err != nil {
		return console.Pending{}, fmt.Errorf("list pending: %w", err)
	}

	return console.DecodePending(reply)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
// The actor, when set, travels in the request metadata.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = transport.WithActor(ctx, c.actor)

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
