// Package jsondb keeps users, trips and follow edges in memory and persists
// them to a JSON file on Close.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/travelboard/internal/db/storage"
	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

type CacheStruct struct {
	Users   []user.User
	Trips   []models.Trip
	Follows []models.FollowEdge
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": [],
	"Trips": [],
	"Follows": []
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// New loads fileName, creating an empty database file when it does not exist.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{fileName: fileName}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := initDBFile(fileName); err != nil {
			return nil, err
		}
		if err := parseJSONFile(db.fileName, &db.Cache); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// NewInMemory returns a JSONDB that is never written to disk.
func NewInMemory() *JSONDB {
	return &JSONDB{}
}

func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	record := *usr
	if record.ID == "" {
		record.ID = models.NewID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	for _, existing := range db.Cache.Users {
		if existing.ID == record.ID || existing.Email == record.Email {
			return "", fmt.Errorf("user %q already exists", record.Email)
		}
	}
	db.Cache.Users = append(db.Cache.Users, record)

	return record.ID, nil
}

func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, usr := range db.Cache.Users {
		if usr.ID == userID {
			found := usr
			return &found, nil
		}
	}

	return nil, models.ErrNotFound
}

func (db *JSONDB) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, usr := range db.Cache.Users {
		if usr.Email == email {
			found := usr
			return &found, nil
		}
	}

	return nil, models.ErrNotFound
}

func (db *JSONDB) GetUsers(ctx context.Context) ([]user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return sortedUsers(db.Cache.Users), nil
}

func (db *JSONDB) SearchUsersByUsername(ctx context.Context, pattern string) ([]user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	needle := strings.ToLower(pattern)
	result := []user.User{}
	for _, usr := range sortedUsers(db.Cache.Users) {
		if len(result) == storage.SearchLimit {
			break
		}
		if strings.Contains(strings.ToLower(usr.Username), needle) {
			result = append(result, usr)
		}
	}

	return result, nil
}

func (db *JSONDB) CreateTrip(ctx context.Context, trip *models.Trip) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	record := *trip
	if record.ID == "" {
		record.ID = models.NewID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	db.Cache.Trips = append(db.Cache.Trips, record)

	return record.ID, nil
}

func (db *JSONDB) GetTrips(ctx context.Context) ([]models.Trip, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]models.Trip, len(db.Cache.Trips))
	copy(result, db.Cache.Trips)

	return result, nil
}

func (db *JSONDB) GetTripsByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return funk.Filter(db.Cache.Trips, func(trip models.Trip) bool {
		return trip.UserID == userID
	}).([]models.Trip), nil
}

func (db *JSONDB) ToggleFollowEdge(ctx context.Context, followerID, followeeID string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, edge := range db.Cache.Follows {
		if edge.FollowerID == followerID && edge.FolloweeID == followeeID {
			db.Cache.Follows = append(db.Cache.Follows[:i], db.Cache.Follows[i+1:]...)
			return false, nil
		}
	}

	db.Cache.Follows = append(db.Cache.Follows, models.FollowEdge{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now().UTC(),
	})

	return true, nil
}

func (db *JSONDB) GetFollowees(ctx context.Context, followerID string) ([]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := []string{}
	for _, edge := range db.Cache.Follows {
		if edge.FollowerID == followerID {
			result = append(result, edge.FolloweeID)
		}
	}

	return result, nil
}

func (db *JSONDB) GetStats(ctx context.Context) (models.InternalStatsResponse, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return models.InternalStatsResponse{
		Users:   int64(len(db.Cache.Users)),
		Trips:   int64(len(db.Cache.Trips)),
		Follows: int64(len(db.Cache.Follows)),
	}, nil
}

func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the cache to the database file. In-memory instances have
// nothing to flush.
func (db *JSONDB) Close() error {
	if db.fileName == "" {
		return nil
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}

func sortedUsers(users []user.User) []user.User {
	result := make([]user.User, len(users))
	copy(result, users)
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}
