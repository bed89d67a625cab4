package grpc

import (
	"context"
	"errors"

	"github.com/dkazakevich/studykeeper/internal/common"
	"github.com/dkazakevich/studykeeper/internal/server/services"
	"github.com/dkazakevich/studykeeper/internal/syncwire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mapError converts application errors to gRPC status codes. Validation and
// unknown-target failures are definitive; clients treat them as terminal.
func mapError(err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) Apply(ctx context.Context, req *syncwire.ApplyRequest) (*syncwire.ApplyResponse, error) {

	result, err := s.records.Apply(ctx, services.ApplyParams{
		OpID:       req.OpID,
		Operation:  req.Operation,
		EntityType: req.EntityType,
		RemoteID:   req.RemoteID,
		OwnerID:    req.OwnerID,
		Payload:    req.Payload,
	})
	if err != nil {
		s.logger.Error(ctx, "apply failed", "op_id", req.OpID, "error", err)
		return nil, mapError(err)
	}

	if result.Duplicate {
		s.logger.Info(ctx, "duplicate operation acknowledged", "op_id", req.OpID)
	}

	return &syncwire.ApplyResponse{RemoteID: result.RemoteID, Duplicate: result.Duplicate}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *syncwire.PingRequest) (*syncwire.PingResponse, error) {

	return &syncwire.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) GetPresignedPutUrl(ctx context.Context, req *syncwire.GetPresignedPutURLRequest) (*syncwire.GetPresignedPutURLResponse, error) {

	key, url, err := s.storage.GetPresignedPutUrl(ctx)
	if err != nil {
		s.logger.Error(ctx, "presign put failed", "error", err)
		return nil, mapError(err)
	}

	return &syncwire.GetPresignedPutURLResponse{Key: key, URL: url}, nil
}

func (s *GRPCServer) GetPresignedGetUrl(ctx context.Context, req *syncwire.GetPresignedGetURLRequest) (*syncwire.GetPresignedGetURLResponse, error) {

	url, err := s.storage.GetPresignedGetUrl(ctx, req.Key)
	if err != nil {
		s.logger.Error(ctx, "presign get failed", "key", req.Key, "error", err)
		return nil, mapError(err)
	}

	return &syncwire.GetPresignedGetURLResponse{URL: url}, nil
}

func (s *GRPCServer) MarkUploaded(ctx context.Context, req *syncwire.MarkUploadedRequest) (*syncwire.MarkUploadedResponse, error) {

	if err := s.records.MarkUploaded(ctx, req.Key); err != nil {
		s.logger.Error(ctx, "mark uploaded failed", "key", req.Key, "error", err)
		return nil, mapError(err)
	}

	return &syncwire.MarkUploadedResponse{}, nil
}
