package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/patric-chuzhbe/travelboard/internal/auth"
	"github.com/patric-chuzhbe/travelboard/internal/logger"
	"github.com/patric-chuzhbe/travelboard/internal/models"
)

type socialService interface {
	ToggleFollow(ctx context.Context, followerID, followeeID string) (*models.ToggleFollowResponse, error)
	ListFollowees(ctx context.Context, followerID string) (*models.FolloweesResponse, error)
	GetLeaderboard(ctx context.Context, viewerID string, limit int) (models.UserSummaries, error)
	GetFriends(ctx context.Context, viewerEmail string) (models.UserSummaries, error)
	SearchUsers(ctx context.Context, pattern, viewerID string) (models.UserSummaries, error)
	Ping(ctx context.Context) error
}

// UsersResponse wraps user lists, since a Struct message cannot be a list.
type UsersResponse struct {
	Users models.UserSummaries `json:"users"`
}

type SocialHandler struct {
	svc socialService
}

func NewSocialHandler(svc socialService) *SocialHandler {
	return &SocialHandler{svc: svc}
}

// viewerID prefers the authenticated viewer over the user_id field.
func viewerID(ctx context.Context, req *structpb.Struct) string {
	if id, ok := auth.ViewerIDFromContext(ctx); ok {
		return id
	}

	return stringField(req, "user_id")
}

func (h *SocialHandler) ToggleFollow(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	followerID := viewerID(ctx, req)
	if followerID == "" {
		return nil, status.Error(codes.InvalidArgument, "follower is not specified")
	}

	result, err := h.svc.ToggleFollow(ctx, followerID, stringField(req, "friend_id"))
	if err != nil {
		return nil, statusFromError(err)
	}

	return encode(result)
}

func (h *SocialHandler) ListFollowees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	followerID := viewerID(ctx, req)
	if followerID == "" {
		return nil, status.Error(codes.InvalidArgument, "user is not specified")
	}

	result, err := h.svc.ListFollowees(ctx, followerID)
	if err != nil {
		return nil, statusFromError(err)
	}

	return encode(result)
}

func (h *SocialHandler) GetLeaderboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := 0
	if value, ok := req.GetFields()["limit"]; ok {
		number, isNumber := value.GetKind().(*structpb.Value_NumberValue)
		if !isNumber || number.NumberValue != float64(int(number.NumberValue)) {
			return nil, status.Error(codes.InvalidArgument, "limit must be an integer")
		}
		limit = int(number.NumberValue)
	}

	result, err := h.svc.GetLeaderboard(ctx, viewerID(ctx, req), limit)
	if err != nil {
		return nil, statusFromError(err)
	}

	return encode(UsersResponse{Users: result})
}

func (h *SocialHandler) GetFriends(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := h.svc.GetFriends(ctx, stringField(req, "email"))
	if err != nil {
		return nil, statusFromError(err)
	}

	return encode(UsersResponse{Users: result})
}

func (h *SocialHandler) SearchUsers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := h.svc.SearchUsers(ctx, stringField(req, "username"), viewerID(ctx, req))
	if err != nil {
		return nil, statusFromError(err)
	}

	return encode(UsersResponse{Users: result})
}

func (h *SocialHandler) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := h.svc.Ping(ctx); err != nil {
		return nil, status.Error(codes.Unavailable, "storage is unavailable")
	}

	return structpb.NewStruct(map[string]interface{}{"ok": true})
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

// statusFromError maps the error taxonomy to gRPC codes. Server side details
// are logged, not returned.
func statusFromError(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidIdentifier):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, models.ErrInvalidOperation):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, models.ErrStoreUnavailable):
		logger.Log.Errorln("request failed", zap.Error(err))
		return status.Error(codes.Unavailable, "storage is unavailable")
	default:
		logger.Log.Errorln("request failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

// encode renders value through its JSON form, so Struct messages carry the
// same field names as the HTTP responses.
func encode(value interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("error while `json.Marshal()` calling: %v", err))
	}

	result := &structpb.Struct{}
	if err := protojson.Unmarshal(data, result); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("error while `protojson.Unmarshal()` calling: %v", err))
	}

	return result, nil
}

// Decode is the client side counterpart of encode.
func Decode(message *structpb.Struct, target interface{}) error {
	data, err := protojson.Marshal(message)
	if err != nil {
		return fmt.Errorf("in internal/grpcserver/handler.go/Decode(): error while `protojson.Marshal()` calling: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("in internal/grpcserver/handler.go/Decode(): error while `json.Unmarshal()` calling: %w", err)
	}

	return nil
}
