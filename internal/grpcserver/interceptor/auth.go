package interceptor

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/patric-chuzhbe/travelboard/internal/auth"
	"github.com/patric-chuzhbe/travelboard/internal/logger"
)

type authenticator interface {
	GetUserIDFromToken(tokenString string) (string, error)
}

type AuthInterceptor struct {
	auth authenticator
}

func NewAuthInterceptor(auth authenticator) *AuthInterceptor {
	return &AuthInterceptor{auth: auth}
}

// UnaryAuthInterceptor attaches the viewer named by the authorization
// metadata to the context of the listed methods. Calls without a valid token
// proceed anonymously.
func (a *AuthInterceptor) UnaryAuthInterceptor(allowedMethods []string) grpc.UnaryServerInterceptor {
	allowed := make(map[string]struct{}, len(allowedMethods))
	for _, m := range allowedMethods {
		allowed[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if _, ok := allowed[info.FullMethod]; !ok {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return handler(ctx, req)
		}

		authHeader := md.Get("authorization")
		if len(authHeader) == 0 || authHeader[0] == "" {
			return handler(ctx, req)
		}

		viewerID, err := a.auth.GetUserIDFromToken(authHeader[0])
		if err != nil {
			logger.Log.Debugln("Error calling the `a.auth.GetUserIDFromToken()`: ", zap.Error(err))
			return handler(ctx, req)
		}

		return handler(context.WithValue(ctx, auth.ViewerIDKey, viewerID), req)
	}
}
