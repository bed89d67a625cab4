package remote

import (
	"context"
	"fmt"

	"github.com/dkazakevich/studykeeper/internal/client/models"
	"github.com/dkazakevich/studykeeper/internal/common"
	"github.com/dkazakevich/studykeeper/internal/syncwire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      syncwire.SyncServiceClient
}

var _ Client = (*GRPCClient)(nil)

func NewGRPCClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = syncwire.NewSyncServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func withOperationID(ctx context.Context, opID string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.OperationIDHeaderName)
	md.Set(common.OperationIDHeaderName, opID)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &syncwire.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}

	return nil
}

func (s *GRPCClient) Apply(ctx context.Context, m *models.Mutation, remoteID, ownerID string) (*Ack, error) {

	req := &syncwire.ApplyRequest{
		OpID:       m.OpID,
		Operation:  string(m.Op),
		EntityType: string(m.Type),
		RemoteID:   remoteID,
		OwnerID:    ownerID,
		Payload:    m.Payload,
	}

	resp, err := s.client.Apply(withOperationID(ctx, m.OpID), req)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &Ack{RemoteID: resp.RemoteID, Duplicate: resp.Duplicate}, nil
}

func (s *GRPCClient) GetPresignedPutURL(ctx context.Context) (string, string, error) {

	resp, err := s.client.GetPresignedPutUrl(ctx, &syncwire.GetPresignedPutURLRequest{})
	if err != nil {
		return "", "", s.mapError(err)
	}

	return resp.Key, resp.URL, nil
}

func (s *GRPCClient) GetPresignedGetURL(ctx context.Context, key string) (string, error) {

	resp, err := s.client.GetPresignedGetUrl(ctx, &syncwire.GetPresignedGetURLRequest{Key: key})
	if err != nil {
		return "", s.mapError(err)
	}

	return resp.URL, nil
}

func (s *GRPCClient) MarkUploaded(ctx context.Context, key string) error {

	_, err := s.client.MarkUploaded(ctx, &syncwire.MarkUploadedRequest{Key: key})
	if err != nil {
		return s.mapError(err)
	}

	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.NotFound, codes.AlreadyExists, codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
