package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// UnaryLoggingInterceptor logs every unary call with a per-request ID,
// the resulting status code and the handler duration.
func UnaryLoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := uuid.NewString()
		start := time.Now()

		resp, err := handler(ctx, req)

		log.Info("Handled request",
			"request_id", id,
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)

		return resp, err
	}
}

// StreamLoggingInterceptor logs every stream with a per-stream ID, its
// final status code and its total duration.
func StreamLoggingInterceptor(log *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		id := uuid.NewString()
		start := time.Now()

		err := handler(srv, ss)

		log.Info("Handled stream",
			"request_id", id,
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)

		return err
	}
}
