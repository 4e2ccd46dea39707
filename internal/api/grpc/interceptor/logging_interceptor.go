package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vehicle-rental-desk/internal/logger"
)

// Unary logs every RPC and turns handler panics into codes.Internal.
func Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panicked", "method", info.FullMethod, "panic", r)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			logger.Debug("gRPC call", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
		}()
		return handler(ctx, req)
	}
}

// Stream is the streaming counterpart of Unary; the health Watch RPC streams.
func Stream() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC stream panicked", "method", info.FullMethod, "panic", r)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(srv, ss)
	}
}
