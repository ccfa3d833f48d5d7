// Package user defines the user record read by the follow graph and the
// leaderboard. Users are created and edited by the account layer; this
// module only reads them.
package user

import "time"

// User represents a registered traveller.
type User struct {
	// ID is the 24-hex ObjectID of the user.
	ID string `json:"id"`

	Username string `json:"username" validate:"required"`

	Email string `json:"email" validate:"required,email"`

	// ProfilePicture is a reference into the photo store, may be empty.
	ProfilePicture string `json:"profilePic"`

	CreatedAt time.Time `json:"created_at"`
}
