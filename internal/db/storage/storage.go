// Package storage declares the full contract every document store backend
// implements. Consumers declare the narrower interfaces they need.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

// SearchLimit caps SearchUsersByUsername results.
const SearchLimit = 50

type Storage interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	// GetUserByID returns models.ErrNotFound when no user has the id.
	GetUserByID(ctx context.Context, userID string) (*user.User, error)

	// GetUserByEmail returns models.ErrNotFound when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)

	// GetUsers returns every user ordered by id ascending.
	GetUsers(ctx context.Context) ([]user.User, error)

	// SearchUsersByUsername does a case-insensitive substring match,
	// ordered by id ascending and capped at SearchLimit.
	SearchUsersByUsername(ctx context.Context, pattern string) ([]user.User, error)

	CreateTrip(ctx context.Context, trip *models.Trip) (string, error)

	GetTrips(ctx context.Context) ([]models.Trip, error)

	GetTripsByUser(ctx context.Context, userID string) ([]models.Trip, error)

	// ToggleFollowEdge atomically removes the edge if it exists or creates it
	// otherwise, and reports whether the edge exists afterwards.
	ToggleFollowEdge(ctx context.Context, followerID, followeeID string) (bool, error)

	// GetFollowees lists followee ids in edge creation order.
	GetFollowees(ctx context.Context, followerID string) ([]string, error)

	GetStats(ctx context.Context) (models.InternalStatsResponse, error)

	Ping(ctx context.Context) error

	Close() error
}
