package mongodb

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/travelboard/internal/db/storage"
	"github.com/patric-chuzhbe/travelboard/internal/db/storage/storagetest"
	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

const testDatabase = "travelboard_test"

// TEST_MONGODB_URL points at a disposable server, e.g. mongodb://localhost:27017.
func openTestDB(t *testing.T) *MongoDB {
	t.Helper()

	uri := os.Getenv("TEST_MONGODB_URL")
	if uri == "" {
		t.Skip("TEST_MONGODB_URL is not set")
	}

	db, err := New(context.Background(), uri, testDatabase, 5*time.Second, WithDBPreReset(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestStorageBehaviour(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return openTestDB(t)
	})
}

func TestDuplicateEmailIsRejected(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.CreateUser(ctx, &user.User{Username: "a", Email: "same@example.com"})
	require.NoError(t, err)

	_, err = db.CreateUser(ctx, &user.User{Username: "b", Email: "same@example.com"})
	assert.Error(t, err)
}

func TestMalformedIDsAreRejected(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetUserByID(context.Background(), "not-an-object-id")
	assert.ErrorIs(t, err, models.ErrInvalidIdentifier)
}

func TestMixedCaseEdgeIsStoredOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	follower, err := db.CreateUser(ctx, &user.User{Username: "a", Email: "a@example.com"})
	require.NoError(t, err)
	followee, err := db.CreateUser(ctx, &user.User{Username: "b", Email: "b@example.com"})
	require.NoError(t, err)

	following, err := db.ToggleFollowEdge(ctx, follower, followee)
	require.NoError(t, err)
	assert.True(t, following)

	followees, err := db.GetFollowees(ctx, strings.ToUpper(follower))
	require.NoError(t, err)
	assert.Equal(t, []string{followee}, followees)

	following, err = db.ToggleFollowEdge(ctx, strings.ToUpper(follower), strings.ToUpper(followee))
	require.NoError(t, err)
	assert.False(t, following)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Follows)
}
