package intake

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/bell-scheduler/internal/api/grpc/transport"
	"github.com/oshokin/bell-scheduler/internal/domain/bell"
	"github.com/oshokin/bell-scheduler/internal/logger"
)

// StatusAccepted is the status field of a successful reply.
const StatusAccepted = "success"

// Service abstracts the intake operation the transport layer depends on.
type Service interface {
	Submit(ctx context.Context, fields map[string]any) (*bell.Receipt, error)
}

var _ IntakeServiceServer = (*Server)(nil)

// Server implements the IntakeService gRPC API.
type Server struct {
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Submit translates the submission and appends it to the intake log.
func (s *Server) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil || len(req.GetFields()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "submission is required")
	}

	receipt, err := s.service.Submit(ctx, req.AsMap())
	if err != nil {
		if errors.Is(err, bell.ErrInvalidSubmission) {
			logger.WarnKV(ctx, "Submission rejected",
				"actor", transport.ActorFromContext(ctx).String(),
				"error", err,
			)

			return nil, status.Error(codes.InvalidArgument, err.Error())
		}

		logger.ErrorKV(ctx, "Submission failed", "error", err)

		return nil, status.Error(codes.Internal, "unable to append submission")
	}

	lines := make([]any, 0, len(receipt.Lines))
	for _, line := range receipt.Lines {
		lines = append(lines, line)
	}

	reply, err := structpb.NewStruct(map[string]any{
		"status": StatusAccepted,
		"id":     receipt.ID,
		"lines":  lines,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode receipt")
	}

	return reply, nil
}
