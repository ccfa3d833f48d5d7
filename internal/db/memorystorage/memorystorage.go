package memorystorage

import (
	"github.com/patric-chuzhbe/travelboard/internal/db/jsondb"
)

// MemoryStorage is a JSONDB without a backing file. It is the fallback store
// when neither a database nor a file is configured.
type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: jsondb.NewInMemory(),
	}, nil
}
