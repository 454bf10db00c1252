package shardpb

import (
	"golang.org/x/net/context"
	"google.golang.org/grpc"
)

type ShardServiceClient interface {
	GetShards(ctx context.Context, in *FetchRequest, opts ...grpc.CallOption) (*ShardSet, error)
	ListShards(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error)
}

type shardServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewShardServiceClient(cc grpc.ClientConnInterface) ShardServiceClient {
	return &shardServiceClient{cc}
}

func (c *shardServiceClient) GetShards(ctx context.Context, in *FetchRequest, opts ...grpc.CallOption) (*ShardSet, error) {
	out := new(ShardSet)
	err := c.cc.Invoke(ctx, "/shardpb.ShardService/GetShards", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *shardServiceClient) ListShards(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error) {
	out := new(ListResponse)
	err := c.cc.Invoke(ctx, "/shardpb.ShardService/ListShards", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type ShardServiceServer interface {
	GetShards(context.Context, *FetchRequest) (*ShardSet, error)
	ListShards(context.Context, *ListRequest) (*ListResponse, error)
}

func RegisterShardServiceServer(s *grpc.Server, srv ShardServiceServer) {
	s.RegisterService(&_ShardService_serviceDesc, srv)
}

func _ShardService_GetShards_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(FetchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShardServiceServer).GetShards(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/shardpb.ShardService/GetShards",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShardServiceServer).GetShards(ctx, req.(*FetchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ShardService_ListShards_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShardServiceServer).ListShards(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/shardpb.ShardService/ListShards",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShardServiceServer).ListShards(ctx, req.(*ListRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var _ShardService_serviceDesc = grpc.ServiceDesc{
	ServiceName: "shardpb.ShardService",
	HandlerType: (*ShardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetShards",
			Handler:    _ShardService_GetShards_Handler,
		},
		{
			MethodName: "ListShards",
			Handler:    _ShardService_ListShards_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shard.proto",
}
