package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/crowdbid/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps the error taxonomy onto gRPC codes. Caller errors keep their
// message; anything else is reported without internals.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrDuplicateBidder), errors.Is(err, common.ErrNameConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrPreconditionFailed):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrorStorage):
		return status.Error(codes.Unavailable, "storage unavailable, retry later")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) errorInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if err == nil {
		s.logger.Debug(ctx, "request served", "method", info.FullMethod, "duration", time.Since(start))
		return resp, nil
	}

	if common.IsCallerError(err) {
		s.logger.Info(ctx, "request rejected", "method", info.FullMethod, "error", err)
	} else {
		s.logger.Error(ctx, "request failed", "method", info.FullMethod, "error", err)
	}
	return nil, toStatus(err)
}

func (s *GRPCServer) streamErrorInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	err := handler(srv, ss)
	if err != nil && !common.IsCallerError(err) {
		s.logger.Error(ss.Context(), "stream failed", "method", info.FullMethod, "error", err)
	}
	return toStatus(err)
}
