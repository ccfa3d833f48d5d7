package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "travelboard.SocialService"

// Full method names, as seen by interceptors.
const (
	MethodToggleFollow   = "/" + serviceName + "/ToggleFollow"
	MethodListFollowees  = "/" + serviceName + "/ListFollowees"
	MethodGetLeaderboard = "/" + serviceName + "/GetLeaderboard"
	MethodGetFriends     = "/" + serviceName + "/GetFriends"
	MethodSearchUsers    = "/" + serviceName + "/SearchUsers"
	MethodPing           = "/" + serviceName + "/Ping"
)

// SocialServiceServer is the server side of travelboard.SocialService. Every
// method exchanges well-known Struct messages.
type SocialServiceServer interface {
	ToggleFollow(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListFollowees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetLeaderboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetFriends(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SearchUsers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(srv SocialServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	return func(
		srv interface{},
		ctx context.Context,
		dec func(interface{}) error,
		interceptor grpc.UnaryServerInterceptor,
	) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SocialServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SocialServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SocialServiceDesc describes travelboard.SocialService for grpc.Server.
var SocialServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SocialServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ToggleFollow",
			Handler:    unaryHandler(MethodToggleFollow, SocialServiceServer.ToggleFollow),
		},
		{
			MethodName: "ListFollowees",
			Handler:    unaryHandler(MethodListFollowees, SocialServiceServer.ListFollowees),
		},
		{
			MethodName: "GetLeaderboard",
			Handler:    unaryHandler(MethodGetLeaderboard, SocialServiceServer.GetLeaderboard),
		},
		{
			MethodName: "GetFriends",
			Handler:    unaryHandler(MethodGetFriends, SocialServiceServer.GetFriends),
		},
		{
			MethodName: "SearchUsers",
			Handler:    unaryHandler(MethodSearchUsers, SocialServiceServer.SearchUsers),
		},
		{
			MethodName: "Ping",
			Handler:    unaryHandler(MethodPing, SocialServiceServer.Ping),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "travelboard/social.proto",
}

// RegisterSocialServiceServer registers srv on s.
func RegisterSocialServiceServer(s grpc.ServiceRegistrar, srv SocialServiceServer) {
	s.RegisterService(&SocialServiceDesc, srv)
}

// SocialServiceClient calls travelboard.SocialService over conn.
type SocialServiceClient struct {
	conn grpc.ClientConnInterface
}

func NewSocialServiceClient(conn grpc.ClientConnInterface) *SocialServiceClient {
	return &SocialServiceClient{conn: conn}
}

func (c *SocialServiceClient) invoke(
	ctx context.Context,
	method string,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SocialServiceClient) ToggleFollow(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodToggleFollow, in, opts...)
}

func (c *SocialServiceClient) ListFollowees(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListFollowees, in, opts...)
}

func (c *SocialServiceClient) GetLeaderboard(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetLeaderboard, in, opts...)
}

func (c *SocialServiceClient) GetFriends(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetFriends, in, opts...)
}

func (c *SocialServiceClient) SearchUsers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSearchUsers, in, opts...)
}

func (c *SocialServiceClient) Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodPing, in, opts...)
}
