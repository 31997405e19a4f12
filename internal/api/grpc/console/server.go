package console

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/bell-scheduler/internal/api/grpc/transport"
	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/logger"
)

// Service abstracts the console operations the transport layer depends on.
type Service interface {
	RingNow(ctx context.Context, actor *bell.Actor) bell.ManualRing
	Stage(ctx context.Context, delay time.Duration) error
	Confirm(ctx context.Context, actor *bell.Actor) (bell.ManualRing, error)
	Schedule(ctx context.Context, delay time.Duration, actor *bell.Actor) (bell.ManualRing, error)
	Clear(ctx context.Context) int
	Pending(ctx context.Context) (time.Duration, []bell.ManualRing)
}

var _ ConsoleServiceServer = (*Server)(nil)

// Server implements the ConsoleService gRPC API.
type Server struct {
	// service holds the pending console rings.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// RingNow rings on the next tick of the trigger loop.
func (s *Server) RingNow(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	actor := transport.ActorFromContext(ctx)
	ring := s.service.RingNow(ctx, actor)

	logger.InfoKV(ctx, "Console ring requested", "actor", actor.String())

	return encodeRing(ring)
}

// StageRing drafts a ring delay for ConfirmRing.
func (s *Server) StageRing(ctx context.Context, req *durationpb.Duration) (*emptypb.Empty, error) {
	delay, err := delayOf(req)
	if err != nil {
		return nil, err
	}

	if err = s.service.Stage(ctx, delay); err != nil {
		return nil, toStatus(err)
	}

	return new(emptypb.Empty), nil
}

// ConfirmRing schedules the staged ring.
func (s *Server) ConfirmRing(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	actor := transport.ActorFromContext(ctx)

	ring, err := s.service.Confirm(ctx, actor)
	if err != nil {
		return nil, toStatus(err)
	}

	logger.InfoKV(ctx, "Console ring confirmed", "actor", actor.String(), "due", ring.Due.Format(time.DateTime))

	return encodeRing(ring)
}

// ScheduleRing arms a ring after the requested delay.
func (s *Server) ScheduleRing(ctx context.Context, req *durationpb.Duration) (*structpb.Struct, error) {
	delay, err := delayOf(req)
	if err != nil {
		return nil, err
	}

	actor := transport.ActorFromContext(ctx)

	ring, err := s.service.Schedule(ctx, delay, actor)
	if err != nil {
		return nil, toStatus(err)
	}

	return encodeRing(ring)
}

// ClearSchedule cancels every ring that has not become due yet.
func (s *Server) ClearSchedule(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	cleared := s.service.Clear(ctx)

	logger.InfoKV(ctx, "Console schedule cleared",
		"actor", transport.ActorFromContext(ctx).String(),
		"cleared", cleared,
	)

	return wrapperspb.Int64(int64(cleared)), nil
}

// ListPending returns the staged delay and the pending rings.
func (s *Server) ListPending(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	staged, rings := s.service.Pending(ctx)

	result, err := EncodePending(Pending{
		Staged: staged,
		Rings:  rings,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode pending rings")
	}

	return result, nil
}

func delayOf(req *durationpb.Duration) (time.Duration, error) {
	if req == nil {
		return 0, status.Error(codes.InvalidArgument, "delay is required")
	}

	if err := req.CheckValid(); err != nil {
		return 0, status.Error(codes.InvalidArgument, err.Error())
	}

	delay := req.AsDuration()
	if delay <= 0 {
		return 0, status.Error(codes.InvalidArgument, bell.ErrInvalidDelay.Error())
	}

	return delay, nil
}

func encodeRing(ring bell.ManualRing) (*structpb.Struct, error) {
	result, err := EncodeRing(ring)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode ring")
	}

	return result, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, bell.ErrNothingStaged):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, bell.ErrInvalidDelay):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
