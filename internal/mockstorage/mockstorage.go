// Package mockstorage provides a testify-based mock of the document store.
// It is used by the transport and aggregator tests to simulate store failures.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

// StorageMock implements storage.Storage on top of mock.Mock.
type StorageMock struct {
	mock.Mock

	// OnGetStats, when set, replaces the testify handler for GetStats.
	OnGetStats func(ctx context.Context) (models.InternalStatsResponse, error)
}

func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

func (m *StorageMock) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

func (m *StorageMock) GetUsers(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]user.User)
	return users, args.Error(1)
}

func (m *StorageMock) SearchUsersByUsername(ctx context.Context, pattern string) ([]user.User, error) {
	args := m.Called(ctx, pattern)
	users, _ := args.Get(0).([]user.User)
	return users, args.Error(1)
}

func (m *StorageMock) CreateTrip(ctx context.Context, trip *models.Trip) (string, error) {
	args := m.Called(ctx, trip)
	return args.String(0), args.Error(1)
}

func (m *StorageMock) GetTrips(ctx context.Context) ([]models.Trip, error) {
	args := m.Called(ctx)
	trips, _ := args.Get(0).([]models.Trip)
	return trips, args.Error(1)
}

func (m *StorageMock) GetTripsByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	args := m.Called(ctx, userID)
	trips, _ := args.Get(0).([]models.Trip)
	return trips, args.Error(1)
}

func (m *StorageMock) ToggleFollowEdge(ctx context.Context, followerID, followeeID string) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *StorageMock) GetFollowees(ctx context.Context, followerID string) ([]string, error) {
	args := m.Called(ctx, followerID)
	followees, _ := args.Get(0).([]string)
	return followees, args.Error(1)
}

// GetStats delegates to OnGetStats when it is set.
func (m *StorageMock) GetStats(ctx context.Context) (models.InternalStatsResponse, error) {
	if m.OnGetStats != nil {
		return m.OnGetStats(ctx)
	}
	args := m.Called(ctx)
	stats, _ := args.Get(0).(models.InternalStatsResponse)
	return stats, args.Error(1)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
