// Package grpcargon integrates database sessions with grpc servers.
package grpcargon

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/performancemedia/sqlargon"
)

// UnaryServerInterceptor runs each unary handler inside a unit of work:
// commit when the handler succeeds, rollback when it returns an error.
func UnaryServerInterceptor(db *sqlargon.Database, opts ...sqlargon.UoWOption) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		txCtx, u, err := db.Begin(ctx, opts...)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "failed to begin transaction: %v", err)
		}

		resp, err := handler(txCtx, req)
		if cerr := u.Close(err); cerr != nil && err == nil {
			return nil, status.Errorf(codes.Internal, "failed to commit transaction: %v", cerr)
		}
		return resp, err
	}
}
