// Package leaderboard builds the ranked and relational user views: the
// countries-visited leaderboard, the friends list and the user search. Every
// call recomputes its counts from the trips currently stored.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

type storage interface {
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	GetUsers(ctx context.Context) ([]user.User, error)
	SearchUsersByUsername(ctx context.Context, pattern string) ([]user.User, error)
	GetTrips(ctx context.Context) ([]models.Trip, error)
	GetFollowees(ctx context.Context, followerID string) ([]string, error)
}

type Aggregator struct {
	db       storage
	validate *validator.Validate
}

func New(db storage) *Aggregator {
	return &Aggregator{
		db:       db,
		validate: validator.New(),
	}
}

// GetLeaderboard ranks every user by distinct countries visited. viewerID is
// optional; when empty nobody is marked as followed. A limit <= 0 returns all
// users.
func (a *Aggregator) GetLeaderboard(ctx context.Context, viewerID string, limit int) (models.UserSummaries, error) {
	following, err := a.followeeSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	users, err := a.db.GetUsers(ctx)
	if err != nil {
		return nil, storeError("GetLeaderboard", "a.db.GetUsers", err)
	}

	trips, err := a.db.GetTrips(ctx)
	if err != nil {
		return nil, storeError("GetLeaderboard", "a.db.GetTrips", err)
	}

	result := Summarize(users, CountriesVisited(trips), following)
	Rank(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// GetFriends lists every user except the one registered with viewerEmail,
// in user id order, marking the ones the viewer follows.
func (a *Aggregator) GetFriends(ctx context.Context, viewerEmail string) (models.UserSummaries, error) {
	if err := a.validate.Var(viewerEmail, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: %q is not an email", models.ErrInvalidIdentifier, viewerEmail)
	}

	viewer, err := a.db.GetUserByEmail(ctx, viewerEmail)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, viewerEmail)
	}
	if err != nil {
		return nil, storeError("GetFriends", "a.db.GetUserByEmail", err)
	}

	following, err := a.followeeSet(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	users, err := a.db.GetUsers(ctx)
	if err != nil {
		return nil, storeError("GetFriends", "a.db.GetUsers", err)
	}

	trips, err := a.db.GetTrips(ctx)
	if err != nil {
		return nil, storeError("GetFriends", "a.db.GetTrips", err)
	}

	others := funk.Filter(users, func(usr user.User) bool {
		return usr.ID != viewer.ID
	}).([]user.User)

	return Summarize(others, CountriesVisited(trips), following), nil
}

// SearchUsers finds users whose username contains the pattern, ignoring case.
func (a *Aggregator) SearchUsers(ctx context.Context, pattern, viewerID string) (models.UserSummaries, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty username pattern", models.ErrInvalidIdentifier)
	}

	following, err := a.followeeSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	users, err := a.db.SearchUsersByUsername(ctx, pattern)
	if err != nil {
		return nil, storeError("SearchUsers", "a.db.SearchUsersByUsername", err)
	}

	trips, err := a.db.GetTrips(ctx)
	if err != nil {
		return nil, storeError("SearchUsers", "a.db.GetTrips", err)
	}

	return Summarize(users, CountriesVisited(trips), following), nil
}

// followeeSet returns an empty set for an empty viewer. An unknown but
// well-formed viewer has no edges and also gets an empty set.
func (a *Aggregator) followeeSet(ctx context.Context, viewerID string) (map[string]struct{}, error) {
	set := map[string]struct{}{}
	if viewerID == "" {
		return set, nil
	}
	viewerID, ok := models.NormalizeID(viewerID)
	if !ok {
		return nil, models.ErrInvalidIdentifier
	}

	followees, err := a.db.GetFollowees(ctx, viewerID)
	if err != nil {
		return nil, storeError("followeeSet", "a.db.GetFollowees", err)
	}
	for _, followeeID := range followees {
		set[followeeID] = struct{}{}
	}

	return set, nil
}

// CountriesVisited maps user id to the number of distinct country strings
// among that user's trips. Countries are compared exactly.
func CountriesVisited(trips []models.Trip) map[string]int {
	countriesByUser := map[string][]string{}
	for _, trip := range trips {
		countriesByUser[trip.UserID] = append(countriesByUser[trip.UserID], trip.Country)
	}

	result := make(map[string]int, len(countriesByUser))
	for userID, countries := range countriesByUser {
		result[userID] = len(funk.UniqString(countries))
	}

	return result
}

// Summarize annotates users in their given order.
func Summarize(users []user.User, countries map[string]int, following map[string]struct{}) models.UserSummaries {
	result := make(models.UserSummaries, 0, len(users))
	for _, usr := range users {
		_, isFollowing := following[usr.ID]
		result = append(result, models.UserSummary{
			ID:               usr.ID,
			Username:         usr.Username,
			Email:            usr.Email,
			ProfilePic:       usr.ProfilePicture,
			CountriesVisited: countries[usr.ID],
			IsFollowing:      isFollowing,
		})
	}

	return result
}

// Rank orders summaries by countries visited, highest first. Equal counts are
// ordered by user id ascending.
func Rank(summaries models.UserSummaries) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].CountriesVisited != summaries[j].CountriesVisited {
			return summaries[i].CountriesVisited > summaries[j].CountriesVisited
		}
		return summaries[i].ID < summaries[j].ID
	})
}

func storeError(funcName, callee string, err error) error {
	return fmt.Errorf(
		"%w: in internal/leaderboard/leaderboard.go/%s(): error while `%s()` calling: %w",
		models.ErrStoreUnavailable,
		funcName,
		callee,
		err,
	)
}
