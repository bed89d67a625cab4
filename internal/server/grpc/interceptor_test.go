package grpc

import (
	"context"
	"testing"

	"github.com/dkazakevich/studykeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestOperationIDInterceptor_CallsHandler(t *testing.T) {
	s := &GRPCServer{logger: nopLogger{}}

	info := &grpc.UnaryServerInfo{FullMethod: "/studykeeper.sync.SyncService/Apply"}
	handlerCalled := false

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return "ok", nil
	}

	ctx := metadata.NewIncomingContext(context.Background(),
		metadata.Pairs(common.OperationIDHeaderName, "op-1"))

	resp, err := s.operationIDInterceptor(ctx, nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
}

func TestOperationIDInterceptor_NoMetadata(t *testing.T) {
	s := &GRPCServer{logger: nopLogger{}}

	info := &grpc.UnaryServerInfo{FullMethod: "/studykeeper.sync.SyncService/Ping"}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, nil
	}

	if _, err := s.operationIDInterceptor(context.Background(), nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
