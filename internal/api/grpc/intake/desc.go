package intake

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/bell-scheduler/internal/api/grpc/transport"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bell.v1.IntakeService"

// MethodSubmit is the full name of the Submit method.
const MethodSubmit = "/" + ServiceName + "/Submit"

// IntakeServiceServer is the server API of the intake service.
type IntakeServiceServer interface {
	Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the intake service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IntakeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Submit",
			Handler:    transport.Unary(MethodSubmit, newStruct, IntakeServiceServer.Submit),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bell/v1/intake.proto",
}

// RegisterIntakeServiceServer registers srv on the gRPC server.
func RegisterIntakeServiceServer(registrar grpc.ServiceRegistrar, srv IntakeServiceServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

// IntakeServiceClient is the client API of the intake service.
type IntakeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewIntakeServiceClient creates a client over an established connection.
func NewIntakeServiceClient(cc grpc.ClientConnInterface) *IntakeServiceClient {
	return &IntakeServiceClient{cc: cc}
}

// Submit sends one submission.
func (c *IntakeServiceClient) Submit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodSubmit, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func newStruct() *structpb.Struct { return new(structpb.Struct) }
