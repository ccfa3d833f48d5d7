package leaderboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/travelboard/internal/db/memorystorage"
	"github.com/patric-chuzhbe/travelboard/internal/mockstorage"
	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

type fixture struct {
	db  *memorystorage.MemoryStorage
	ids map[string]string
}

func newFixture(t *testing.T, tripsByUser map[string][]string, usernames ...string) *fixture {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	ctx := context.Background()
	f := &fixture{db: db, ids: map[string]string{}}
	for _, username := range usernames {
		id, err := db.CreateUser(ctx, &user.User{Username: username, Email: username + "@example.com"})
		require.NoError(t, err)
		f.ids[username] = id
		for _, country := range tripsByUser[username] {
			_, err := db.CreateTrip(ctx, &models.Trip{UserID: id, Country: country})
			require.NoError(t, err)
		}
	}

	return f
}

func (f *fixture) toggle(t *testing.T, follower, followee string) bool {
	t.Helper()
	following, err := f.db.ToggleFollowEdge(context.Background(), f.ids[follower], f.ids[followee])
	require.NoError(t, err)
	return following
}

func (f *fixture) follow(t *testing.T, follower, followee string) {
	t.Helper()
	require.True(t, f.toggle(t, follower, followee))
}

func TestCountriesVisited(t *testing.T) {
	trips := []models.Trip{
		{UserID: "a", Country: "France"},
		{UserID: "a", Country: "France"},
		{UserID: "a", Country: "Spain"},
		{UserID: "a", Country: "france"},
		{UserID: "b", Country: "Italy"},
	}

	counts := CountriesVisited(trips)

	assert.Equal(t, 3, counts["a"], "countries are compared exactly")
	assert.Equal(t, 1, counts["b"])
	assert.Zero(t, counts["c"])
}

func TestRank(t *testing.T) {
	summaries := models.UserSummaries{
		{ID: "c", CountriesVisited: 1},
		{ID: "a", CountriesVisited: 1},
		{ID: "b", CountriesVisited: 4},
		{ID: "d", CountriesVisited: 0},
	}

	Rank(summaries)

	var order []string
	for _, summary := range summaries {
		order = append(order, summary.ID)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, order)
}

func TestGetLeaderboard(t *testing.T) {
	f := newFixture(t, map[string][]string{
		"u1": {"France", "France", "Spain"},
		"u2": {"Italy"},
		"u3": {"Japan"},
	}, "u1", "u2", "u3", "u4")
	board := New(f.db)
	ctx := context.Background()

	t.Run("scenario from France, France, Spain vs Italy", func(t *testing.T) {
		result, err := board.GetLeaderboard(ctx, "", 0)
		require.NoError(t, err)
		require.Len(t, result, 4)

		assert.Equal(t, f.ids["u1"], result[0].ID)
		assert.Equal(t, 2, result[0].CountriesVisited)
		assert.Equal(t, 1, result[1].CountriesVisited)
		assert.Equal(t, 1, result[2].CountriesVisited)
		assert.Less(t, result[1].ID, result[2].ID, "ties ordered by id")
		assert.Equal(t, f.ids["u4"], result[3].ID)
	})

	t.Run("without viewer nobody is followed", func(t *testing.T) {
		f.follow(t, "u2", "u1")
		defer func() {
			require.False(t, f.toggle(t, "u2", "u1"))
		}()

		result, err := board.GetLeaderboard(ctx, "", 0)
		require.NoError(t, err)
		for _, summary := range result {
			assert.False(t, summary.IsFollowing)
		}
	})

	t.Run("non increasing and stable", func(t *testing.T) {
		first, err := board.GetLeaderboard(ctx, "", 0)
		require.NoError(t, err)
		second, err := board.GetLeaderboard(ctx, "", 0)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		for i := 1; i < len(first); i++ {
			assert.GreaterOrEqual(t, first[i-1].CountriesVisited, first[i].CountriesVisited)
		}
	})

	t.Run("viewer marks followees", func(t *testing.T) {
		f.follow(t, "u4", "u3")

		result, err := board.GetLeaderboard(ctx, f.ids["u4"], 0)
		require.NoError(t, err)
		for _, summary := range result {
			assert.Equal(t, summary.ID == f.ids["u3"], summary.IsFollowing, summary.Username)
		}
	})

	t.Run("upper-case viewer marks the same followees", func(t *testing.T) {
		result, err := board.GetLeaderboard(ctx, strings.ToUpper(f.ids["u4"]), 0)
		require.NoError(t, err)
		for _, summary := range result {
			assert.Equal(t, summary.ID == f.ids["u3"], summary.IsFollowing, summary.Username)
		}
	})

	t.Run("limit", func(t *testing.T) {
		result, err := board.GetLeaderboard(ctx, "", 2)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, f.ids["u1"], result[0].ID)
	})

	t.Run("unknown viewer has no edges", func(t *testing.T) {
		result, err := board.GetLeaderboard(ctx, models.NewID(), 0)
		require.NoError(t, err)
		assert.Len(t, result, 4)
	})

	t.Run("malformed viewer", func(t *testing.T) {
		_, err := board.GetLeaderboard(ctx, "u1", 0)
		assert.ErrorIs(t, err, models.ErrInvalidIdentifier)
	})
}

func TestGetLeaderboardCountsOnlyCurrentTrips(t *testing.T) {
	f := newFixture(t, nil, "u1")
	board := New(f.db)
	ctx := context.Background()

	result, err := board.GetLeaderboard(ctx, "", 0)
	require.NoError(t, err)
	assert.Zero(t, result[0].CountriesVisited)

	_, err = f.db.CreateTrip(ctx, &models.Trip{UserID: f.ids["u1"], Country: "Peru"})
	require.NoError(t, err)

	result, err = board.GetLeaderboard(ctx, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result[0].CountriesVisited)
}

func TestGetFriends(t *testing.T) {
	f := newFixture(t, map[string][]string{"u3": {"Chile", "Peru"}}, "u1", "u2", "u3")
	f.follow(t, "u1", "u3")
	board := New(f.db)
	ctx := context.Background()

	result, err := board.GetFriends(ctx, "u1@example.com")
	require.NoError(t, err)
	require.Len(t, result, 2)
	for _, summary := range result {
		assert.NotEqual(t, f.ids["u1"], summary.ID, "the viewer is never listed")
	}
	assert.Equal(t, f.ids["u2"], result[0].ID)
	assert.False(t, result[0].IsFollowing)
	assert.Equal(t, f.ids["u3"], result[1].ID)
	assert.True(t, result[1].IsFollowing)
	assert.Equal(t, 2, result[1].CountriesVisited)

	_, err = board.GetFriends(ctx, "")
	assert.ErrorIs(t, err, models.ErrInvalidIdentifier)

	_, err = board.GetFriends(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	f := newFixture(t, map[string][]string{"Anna": {"Norway"}}, "Anna", "joanna", "bob")
	f.follow(t, "bob", "joanna")
	board := New(f.db)
	ctx := context.Background()

	result, err := board.SearchUsers(ctx, "ANN", f.ids["bob"])
	require.NoError(t, err)
	require.Len(t, result, 2)
	for _, summary := range result {
		assert.Equal(t, summary.ID == f.ids["joanna"], summary.IsFollowing)
		if summary.ID == f.ids["Anna"] {
			assert.Equal(t, 1, summary.CountriesVisited)
		}
	}

	_, err = board.SearchUsers(ctx, "", "")
	assert.ErrorIs(t, err, models.ErrInvalidIdentifier)
}

func TestStoreFailures(t *testing.T) {
	storeErr := errors.New("no reachable servers")
	db := new(mockstorage.StorageMock)
	db.On("GetUsers", mock.Anything).Return([]user.User{{ID: models.NewID()}}, nil)
	db.On("GetTrips", mock.Anything).Return(nil, storeErr)
	db.On("GetUserByEmail", mock.Anything, mock.Anything).Return(nil, storeErr)

	board := New(db)

	_, err := board.GetLeaderboard(context.Background(), "", 0)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, err, storeErr)

	_, err = board.GetFriends(context.Background(), "u1@example.com")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}
