package transport

import (
	"context"

	"google.golang.org/grpc"
)

// Unary builds a grpc.MethodHandler in the shape protoc-gen-go-grpc emits.
// S is the server interface, In and Out are the request and reply messages.
func Unary[S any, In any, Out any](
	fullMethod string,
	newIn func() In,
	call func(server S, ctx context.Context, in In) (Out, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newIn()
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(S)

		if interceptor == nil {
			out, err := call(server, ctx, in)

			return out, err
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(In)
			out, err := call(server, ctx, typed)

			return out, err
		}

		return interceptor(ctx, in, info, handler)
	}
}
