// Package service puts the follow graph and the leaderboard behind one
// facade shared by the HTTP and gRPC transports.
package service

import (
	"context"
	"fmt"

	"github.com/patric-chuzhbe/travelboard/internal/models"
)

type socialGraph interface {
	ToggleFollow(ctx context.Context, followerID, followeeID string) (*models.ToggleResult, error)
	ListFollowees(ctx context.Context, followerID string) ([]string, error)
}

type aggregator interface {
	GetLeaderboard(ctx context.Context, viewerID string, limit int) (models.UserSummaries, error)
	GetFriends(ctx context.Context, viewerEmail string) (models.UserSummaries, error)
	SearchUsers(ctx context.Context, pattern, viewerID string) (models.UserSummaries, error)
}

type statsKeeper interface {
	GetStats(ctx context.Context) (models.InternalStatsResponse, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	statsKeeper
	pinger
}

type Service struct {
	graph socialGraph
	board aggregator
	db    storage
}

func New(graph socialGraph, board aggregator, db storage) *Service {
	return &Service{
		graph: graph,
		board: board,
		db:    db,
	}
}

// ToggleFollow flips the follow edge and renders the result in the response
// shape the clients expect.
func (s *Service) ToggleFollow(ctx context.Context, followerID, followeeID string) (*models.ToggleFollowResponse, error) {
	result, err := s.graph.ToggleFollow(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}

	message := models.MessageUnfollowed
	if result.Following {
		message = models.MessageFollowed
	}

	return &models.ToggleFollowResponse{
		Status:      "success",
		Message:     message,
		IsFollowing: result.Following,
		Following:   result.Followees,
	}, nil
}

func (s *Service) ListFollowees(ctx context.Context, followerID string) (*models.FolloweesResponse, error) {
	followees, err := s.graph.ListFollowees(ctx, followerID)
	if err != nil {
		return nil, err
	}

	return &models.FolloweesResponse{Following: followees}, nil
}

// GetLeaderboard rejects negative limits; zero means no limit.
func (s *Service) GetLeaderboard(ctx context.Context, viewerID string, limit int) (models.UserSummaries, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", models.ErrInvalidOperation, limit)
	}

	return s.board.GetLeaderboard(ctx, viewerID, limit)
}

func (s *Service) GetFriends(ctx context.Context, viewerEmail string) (models.UserSummaries, error) {
	return s.board.GetFriends(ctx, viewerEmail)
}

func (s *Service) SearchUsers(ctx context.Context, pattern, viewerID string) (models.UserSummaries, error) {
	return s.board.SearchUsers(ctx, pattern, viewerID)
}

// GetInternalStats returns the number of users, trips and follow edges.
func (s *Service) GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error) {
	stats, err := s.db.GetStats(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}

	return stats, nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
