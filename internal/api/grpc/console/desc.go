package console

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/bell-scheduler/internal/api/grpc/transport"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bell.v1.ConsoleService"

// Full method names.
const (
	MethodRingNow       = "/" + ServiceName + "/RingNow"
	MethodStageRing     = "/" + ServiceName + "/StageRing"
	MethodConfirmRing   = "/" + ServiceName + "/ConfirmRing"
	MethodScheduleRing  = "/" + ServiceName + "/ScheduleRing"
	MethodClearSchedule = "/" + ServiceName + "/ClearSchedule"
	MethodListPending   = "/" + ServiceName + "/ListPending"
)

// ConsoleServiceServer is the server API of the console service.
type ConsoleServiceServer interface {
	RingNow(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	StageRing(ctx context.Context, req *durationpb.Duration) (*emptypb.Empty, error)
	ConfirmRing(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	ScheduleRing(ctx context.Context, req *durationpb.Duration) (*structpb.Struct, error)
	ClearSchedule(ctx context.Context, req *emptypb.Empty) (*wrapperspb.Int64Value, error)
	ListPending(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes the console service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ConsoleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RingNow",
			Handler:    transport.Unary(MethodRingNow, newEmpty, ConsoleServiceServer.RingNow),
		},
		{
			MethodName: "StageRing",
			Handler:    transport.Unary(MethodStageRing, newDuration, ConsoleServiceServer.StageRing),
		},
		{
			MethodName: "ConfirmRing",
			Handler:    transport.Unary(MethodConfirmRing, newEmpty, ConsoleServiceServer.ConfirmRing),
		},
		{
			MethodName: "ScheduleRing",
			Handler:    transport.Unary(MethodScheduleRing, newDuration, ConsoleServiceServer.ScheduleRing),
		},
		{
			MethodName: "ClearSchedule",
			Handler:    transport.Unary(MethodClearSchedule, newEmpty, ConsoleServiceServer.ClearSchedule),
		},
		{
			MethodName: "ListPending",
			Handler:    transport.Unary(MethodListPending, newEmpty, ConsoleServiceServer.ListPending),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bell/v1/console.proto",
}

// RegisterConsoleServiceServer registers srv on the gRPC server.
func RegisterConsoleServiceServer(registrar grpc.ServiceRegistrar, srv ConsoleServiceServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

func newDuration() *durationpb.Duration { return new(durationpb.Duration) }
