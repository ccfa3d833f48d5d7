package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trip is the read projection of a trip record owned by the trips CRUD layer.
// Only UserID and Country take part in the ranking.
type Trip struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id" validate:"required"`
	Country     string    `json:"country" validate:"required"`
	PlaceName   string    `json:"place_name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowEdge means FollowerID follows FolloweeID.
type FollowEdge struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type UserSummary struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	ProfilePic       string `json:"profilePic"`
	CountriesVisited int    `json:"countriesVisited"`
	IsFollowing      bool   `json:"isFollowing"`
}

type UserSummaries []UserSummary

// ToggleResult is the state of the edge after a toggle together with the
// follower's full followee list.
type ToggleResult struct {
	Following bool
	Followees []string
}

type ToggleFollowResponse struct {
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	IsFollowing bool     `json:"isFollowing"`
	Following   []string `json:"following"`
}

type FolloweesResponse struct {
	Following []string `json:"following"`
}

type InternalStatsResponse struct {
	Users   int64 `json:"users"`
	Trips   int64 `json:"trips"`
	Follows int64 `json:"follows"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

const (
	StorageTypeUnknown = iota
	StorageTypeMongo
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

const (
	MessageFollowed   = "Followed"
	MessageUnfollowed = "Unfollowed"
)

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotFound          = errors.New("not found")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// NewID returns a fresh 24-hex identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a 24-hex ObjectID string.
func IsValidID(id string) bool {
	_, ok := NormalizeID(id)
	return ok
}

// NormalizeID returns the canonical lower-case form of a 24-hex ObjectID.
// Identifiers are compared and stored only in this form.
func NormalizeID(id string) (string, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", false
	}

	return oid.Hex(), true
}
