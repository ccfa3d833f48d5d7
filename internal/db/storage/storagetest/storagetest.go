// Package storagetest holds the behaviour every storage.Storage backend must
// show. Backend packages run it from their own tests.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/travelboard/internal/db/storage"
	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

// Run exercises an empty store returned by newStore. newStore is called once
// per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Run("users", func(t *testing.T) {
		db := newStore(t)
		ctx := context.Background()

		aliceID, err := db.CreateUser(ctx, &user.User{Username: "Alice", Email: "alice@example.com", ProfilePicture: "p/1.png"})
		require.NoError(t, err)
		assert.True(t, models.IsValidID(aliceID))

		bobID, err := db.CreateUser(ctx, &user.User{Username: "bob", Email: "bob@example.com"})
		require.NoError(t, err)

		usr, err := db.GetUserByID(ctx, aliceID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", usr.Username)
		assert.Equal(t, "p/1.png", usr.ProfilePicture)

		usr, err = db.GetUserByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, bobID, usr.ID)

		_, err = db.GetUserByID(ctx, models.NewID())
		assert.ErrorIs(t, err, models.ErrNotFound)

		_, err = db.GetUserByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, models.ErrNotFound)

		users, err := db.GetUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Less(t, users[0].ID, users[1].ID)
	})

	t.Run("search", func(t *testing.T) {
		db := newStore(t)
		ctx := context.Background()

		for _, username := range []string{"Marco", "marcella", "bob", "100%_real"} {
			_, err := db.CreateUser(ctx, &user.User{Username: username, Email: username + "@example.com"})
			require.NoError(t, err)
		}

		found, err := db.SearchUsersByUsername(ctx, "MARC")
		require.NoError(t, err)
		assert.Len(t, found, 2)

		found, err = db.SearchUsersByUsername(ctx, "%_")
		require.NoError(t, err)
		require.Len(t, found, 1, "pattern characters match literally")
		assert.Equal(t, "100%_real", found[0].Username)

		found, err = db.SearchUsersByUsername(ctx, "zzz")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("search limit", func(t *testing.T) {
		db := newStore(t)
		ctx := context.Background()

		for i := 0; i < storage.SearchLimit+5; i++ {
			_, err := db.CreateUser(ctx, &user.User{
				Username: fmt.Sprintf("traveller%03d", i),
				Email:    fmt.Sprintf("traveller%03d@example.com", i),
			})
			require.NoError(t, err)
		}

		found, err := db.SearchUsersByUsername(ctx, "travel")
		require.NoError(t, err)
		assert.Len(t, found, storage.SearchLimit)
	})

	t.Run("trips", func(t *testing.T) {
		db := newStore(t)
		ctx := context.Background()

		aliceID, err := db.CreateUser(ctx, &user.User{Username: "alice", Email: "alice@example.com"})
		require.NoError(t, err)
		bobID, err := db.CreateUser(ctx, &user.User{Username: "bob", Email: "bob@example.com"})
		require.NoError(t, err)

		for _, trip := range []models.Trip{
			{UserID: aliceID, Country: "France", PlaceName: "Paris"},
			{UserID: aliceID, Country: "Spain"},
			{UserID: bobID, Country: "Italy"},
		} {
			tripID, err := db.CreateTrip(ctx, &trip)
			require.NoError(t, err)
			assert.True(t, models.IsValidID(tripID))
		}

		trips, err := db.GetTrips(ctx)
		require.NoError(t, err)
		assert.Len(t, trips, 3)

		aliceTrips, err := db.GetTripsByUser(ctx, aliceID)
		require.NoError(t, err)
		require.Len(t, aliceTrips, 2)
		for _, trip := range aliceTrips {
			assert.Equal(t, aliceID, trip.UserID)
		}
	})

	t.Run("follow edges", func(t *testing.T) {
		db := newStore(t)
		ctx := context.Background()

		ids := make([]string, 3)
		for i := range ids {
			var err error
			ids[i], err = db.CreateUser(ctx, &user.User{
				Username: fmt.Sprintf("u%d", i),
				Email:    fmt.Sprintf("u%d@example.com", i),
			})
			require.NoError(t, err)
		}

		following, err := db.ToggleFollowEdge(ctx, ids[0], ids[2])
		require.NoError(t, err)
		assert.True(t, following)
		following, err = db.ToggleFollowEdge(ctx, ids[0], ids[1])
		require.NoError(t, err)
		assert.True(t, following)

		followees, err := db.GetFollowees(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, []string{ids[2], ids[1]}, followees)

		followees, err = db.GetFollowees(ctx, ids[1])
		require.NoError(t, err)
		assert.Empty(t, followees)

		following, err = db.ToggleFollowEdge(ctx, ids[0], ids[2])
		require.NoError(t, err)
		assert.False(t, following)

		followees, err = db.GetFollowees(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, []string{ids[1]}, followees)

		stats, err := db.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.InternalStatsResponse{Users: 3, Trips: 0, Follows: 1}, stats)
	})

	t.Run("concurrent toggles", func(t *testing.T) {
		db := newStore(t)
		ctx := context.Background()

		follower, err := db.CreateUser(ctx, &user.User{Username: "a", Email: "a@example.com"})
		require.NoError(t, err)
		followee, err := db.CreateUser(ctx, &user.User{Username: "b", Email: "b@example.com"})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := db.ToggleFollowEdge(ctx, follower, followee)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		followees, err := db.GetFollowees(ctx, follower)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(followees), 1, "at most one edge per pair")
	})

	t.Run("ping", func(t *testing.T) {
		db := newStore(t)
		assert.NoError(t, db.Ping(context.Background()))
	})
}
