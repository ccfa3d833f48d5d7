package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/travelboard/internal/db/memorystorage"
	"github.com/patric-chuzhbe/travelboard/internal/leaderboard"
	"github.com/patric-chuzhbe/travelboard/internal/mockstorage"
	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/socialgraph"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

func newService(t *testing.T) (*Service, *memorystorage.MemoryStorage) {
	t.Helper()
	db, err := memorystorage.New()
	require.NoError(t, err)

	return New(socialgraph.New(db, nil), leaderboard.New(db), db), db
}

func TestToggleFollowResponse(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	u1, err := db.CreateUser(ctx, &user.User{Username: "u1", Email: "u1@example.com"})
	require.NoError(t, err)
	u2, err := db.CreateUser(ctx, &user.User{Username: "u2", Email: "u2@example.com"})
	require.NoError(t, err)

	followed, err := svc.ToggleFollow(ctx, u1, u2)
	require.NoError(t, err)
	assert.Equal(t, &models.ToggleFollowResponse{
		Status:      "success",
		Message:     models.MessageFollowed,
		IsFollowing: true,
		Following:   []string{u2},
	}, followed)

	unfollowed, err := svc.ToggleFollow(ctx, u1, u2)
	require.NoError(t, err)
	assert.Equal(t, models.MessageUnfollowed, unfollowed.Message)
	assert.False(t, unfollowed.IsFollowing)
	assert.Empty(t, unfollowed.Following)

	listed, err := svc.ListFollowees(ctx, u1)
	require.NoError(t, err)
	assert.Empty(t, listed.Following)
}

func TestGetLeaderboardRejectsNegativeLimit(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.GetLeaderboard(context.Background(), "", -1)
	assert.ErrorIs(t, err, models.ErrInvalidOperation)

	result, err := svc.GetLeaderboard(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestGetInternalStats(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	u1, err := db.CreateUser(ctx, &user.User{Username: "u1", Email: "u1@example.com"})
	require.NoError(t, err)
	_, err = db.CreateTrip(ctx, &models.Trip{UserID: u1, Country: "Ghana"})
	require.NoError(t, err)

	stats, err := svc.GetInternalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.InternalStatsResponse{Users: 1, Trips: 1}, stats)

	require.NoError(t, svc.Ping(ctx))
}

func TestGetInternalStatsStoreFailure(t *testing.T) {
	db := new(mockstorage.StorageMock)
	db.On("Ping", mock.Anything).Return(errors.New("down"))
	db.OnGetStats = func(context.Context) (models.InternalStatsResponse, error) {
		return models.InternalStatsResponse{}, errors.New("down")
	}
	svc := New(socialgraph.New(db, nil), leaderboard.New(db), db)

	_, err := svc.GetInternalStats(context.Background())
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	assert.Error(t, svc.Ping(context.Background()))
}
