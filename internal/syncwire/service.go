package syncwire

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ServiceName = "studykeeper.SyncService"

	methodApply              = "/" + ServiceName + "/Apply"
	methodPing               = "/" + ServiceName + "/Ping"
	methodGetPresignedPutURL = "/" + ServiceName + "/GetPresignedPutUrl"
	methodGetPresignedGetURL = "/" + ServiceName + "/GetPresignedGetUrl"
	methodMarkUploaded       = "/" + ServiceName + "/MarkUploaded"
)

// SyncServiceClient is the client-side stub of the sync contract.
type SyncServiceClient interface {
	Apply(ctx context.Context, in *ApplyRequest, opts ...grpc.CallOption) (*ApplyResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	GetPresignedPutUrl(ctx context.Context, in *GetPresignedPutURLRequest, opts ...grpc.CallOption) (*GetPresignedPutURLResponse, error)
	GetPresignedGetUrl(ctx context.Context, in *GetPresignedGetURLRequest, opts ...grpc.CallOption) (*GetPresignedGetURLResponse, error)
	MarkUploaded(ctx context.Context, in *MarkUploadedRequest, opts ...grpc.CallOption) (*MarkUploadedResponse, error)
}

type syncServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSyncServiceClient returns a stub bound to the given connection.
func NewSyncServiceClient(cc grpc.ClientConnInterface) SyncServiceClient {
	return &syncServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.ForceCodec(jsonCodec{})}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncServiceClient) Apply(ctx context.Context, in *ApplyRequest, opts ...grpc.CallOption) (*ApplyResponse, error) {
	return invoke[ApplyResponse](ctx, c.cc, methodApply, in, opts)
}

func (c *syncServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, methodPing, in, opts)
}

func (c *syncServiceClient) GetPresignedPutUrl(ctx context.Context, in *GetPresignedPutURLRequest, opts ...grpc.CallOption) (*GetPresignedPutURLResponse, error) {
	return invoke[GetPresignedPutURLResponse](ctx, c.cc, methodGetPresignedPutURL, in, opts)
}

func (c *syncServiceClient) GetPresignedGetUrl(ctx context.Context, in *GetPresignedGetURLRequest, opts ...grpc.CallOption) (*GetPresignedGetURLResponse, error) {
	return invoke[GetPresignedGetURLResponse](ctx, c.cc, methodGetPresignedGetURL, in, opts)
}

func (c *syncServiceClient) MarkUploaded(ctx context.Context, in *MarkUploadedRequest, opts ...grpc.CallOption) (*MarkUploadedResponse, error) {
	return invoke[MarkUploadedResponse](ctx, c.cc, methodMarkUploaded, in, opts)
}

// SyncServiceServer is the server-side contract.
type SyncServiceServer interface {
	Apply(context.Context, *ApplyRequest) (*ApplyResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetPresignedPutUrl(context.Context, *GetPresignedPutURLRequest) (*GetPresignedPutURLResponse, error)
	GetPresignedGetUrl(context.Context, *GetPresignedGetURLRequest) (*GetPresignedGetURLResponse, error)
	MarkUploaded(context.Context, *MarkUploadedRequest) (*MarkUploadedResponse, error)
}

// RegisterSyncServiceServer registers the implementation with a gRPC server.
func RegisterSyncServiceServer(s grpc.ServiceRegistrar, srv SyncServiceServer) {
	s.RegisterService(&SyncService_ServiceDesc, srv)
}

func unaryHandler[Req any](method string, call func(SyncServiceServer, context.Context, *Req) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SyncServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SyncServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SyncService_ServiceDesc is the hand-maintained grpc.ServiceDesc for the
// sync contract (no protobuf codegen; see package doc).
var SyncService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Apply",
			Handler: unaryHandler(methodApply, func(s SyncServiceServer, ctx context.Context, in *ApplyRequest) (any, error) {
				return s.Apply(ctx, in)
			}),
		},
		{
			MethodName: "Ping",
			Handler: unaryHandler(methodPing, func(s SyncServiceServer, ctx context.Context, in *PingRequest) (any, error) {
				return s.Ping(ctx, in)
			}),
		},
		{
			MethodName: "GetPresignedPutUrl",
			Handler: unaryHandler(methodGetPresignedPutURL, func(s SyncServiceServer, ctx context.Context, in *GetPresignedPutURLRequest) (any, error) {
				return s.GetPresignedPutUrl(ctx, in)
			}),
		},
		{
			MethodName: "GetPresignedGetUrl",
			Handler: unaryHandler(methodGetPresignedGetURL, func(s SyncServiceServer, ctx context.Context, in *GetPresignedGetURLRequest) (any, error) {
				return s.GetPresignedGetUrl(ctx, in)
			}),
		},
		{
			MethodName: "MarkUploaded",
			Handler: unaryHandler(methodMarkUploaded, func(s SyncServiceServer, ctx context.Context, in *MarkUploadedRequest) (any, error) {
				return s.MarkUploaded(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "syncwire",
}
