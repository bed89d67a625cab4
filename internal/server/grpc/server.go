// Package grpc exposes the sync contract over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dkazakevich/studykeeper/internal/logging"
	"github.com/dkazakevich/studykeeper/internal/server/services"
	"github.com/dkazakevich/studykeeper/internal/syncwire"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address string
	records *services.RecordService
	storage *services.StorageService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, rs *services.RecordService, ss *services.StorageService) (*GRPCServer, error) {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		records: rs,
		storage: ss,
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.operationIDInterceptor))

	syncwire.RegisterSyncServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
