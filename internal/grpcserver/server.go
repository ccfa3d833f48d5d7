// Package grpcserver serves travelboard.SocialService, the gRPC twin of the
// HTTP API.
package grpcserver

import (
	"net"

	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/travelboard/internal/grpcserver/interceptor"
)

type authenticator interface {
	GetUserIDFromToken(tokenString string) (string, error)
}

// NewGRPCServer listens on addr and registers handler behind the logging and
// viewer identification interceptors.
func NewGRPCServer(
	addr string,
	handler SocialServiceServer,
	auth authenticator,
) (*grpc.Server, net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	authInterceptor := interceptor.NewAuthInterceptor(auth)

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptor.UnaryLoggingInterceptor(),
			authInterceptor.UnaryAuthInterceptor([]string{
				MethodToggleFollow,
				MethodListFollowees,
				MethodGetLeaderboard,
				MethodSearchUsers,
			}),
		),
	)
	RegisterSocialServiceServer(server, handler)

	return server, lis, nil
}
