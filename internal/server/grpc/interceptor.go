package grpc

import (
	"context"

	"github.com/dkazakevich/studykeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// operationIDInterceptor logs every unary call together with the operation id
// the client stamped on it, which makes a mutation traceable from the client
// log to the server log.
func (s *GRPCServer) operationIDInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	var opID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.OperationIDHeaderName)
		if len(values) > 0 {
			opID = values[0]
		}
	}

	if opID != "" {
		s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "op_id", opID)
	} else {
		s.logger.Debug(ctx, "rpc", "method", info.FullMethod)
	}

	return handler(ctx, req)
}
