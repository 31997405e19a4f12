package console

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ConsoleServiceClient is the client API of the console service.
type ConsoleServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewConsoleServiceClient creates a client over an established connection.
func NewConsoleServiceClient(cc grpc.ClientConnInterface) *ConsoleServiceClient {
	return &ConsoleServiceClient{cc: cc}
}

// RingNow rings on the next tick.
func (c *ConsoleServiceClient) RingNow(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodRingNow, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// StageRing drafts a ring delay.
func (c *ConsoleServiceClient) StageRing(ctx context.Context, in *durationpb.Duration, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MethodStageRing, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ConfirmRing schedules the drafted ring.
func (c *ConsoleServiceClient) ConfirmRing(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodConfirmRing, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ScheduleRing arms a ring after the given delay.
func (c *ConsoleServiceClient) ScheduleRing(ctx context.Context, in *durationpb.Duration, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodScheduleRing, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ClearSchedule cancels pending rings.
func (c *ConsoleServiceClient) ClearSchedule(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, MethodClearSchedule, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ListPending lists the draft and the pending rings.
func (c *ConsoleServiceClient) ListPending(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodListPending, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
