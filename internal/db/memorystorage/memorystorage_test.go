package memorystorage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/travelboard/internal/db/storage"
	"github.com/patric-chuzhbe/travelboard/internal/db/storage/storagetest"
)

func TestStorageBehaviour(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		db, err := New()
		require.NoError(t, err)
		return db
	})
}
