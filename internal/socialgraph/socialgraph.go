// Package socialgraph owns the directed "follows" relation between users and
// its toggle semantics.
package socialgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/patric-chuzhbe/travelboard/internal/activitylog"
	"github.com/patric-chuzhbe/travelboard/internal/models"
	"github.com/patric-chuzhbe/travelboard/internal/user"
)

type userFinder interface {
	GetUserByID(ctx context.Context, userID string) (*user.User, error)
}

type edgeKeeper interface {
	ToggleFollowEdge(ctx context.Context, followerID, followeeID string) (bool, error)
	GetFollowees(ctx context.Context, followerID string) ([]string, error)
}

type storage interface {
	userFinder
	edgeKeeper
}

type activityRecorder interface {
	EnqueueEvent(event activitylog.Event)
}

// Graph toggles and lists follow edges.
type Graph struct {
	db       storage
	activity activityRecorder
}

func New(db storage, activity activityRecorder) *Graph {
	return &Graph{
		db:       db,
		activity: activity,
	}
}

// ToggleFollow removes the follower -> followee edge if it exists and creates
// it otherwise. Two sequential calls with the same arguments leave the edge
// set unchanged.
func (g *Graph) ToggleFollow(ctx context.Context, followerID, followeeID string) (*models.ToggleResult, error) {
	followerID, followeeID, ok := normalizePair(followerID, followeeID)
	if !ok {
		return nil, models.ErrInvalidIdentifier
	}

	if followerID == followeeID {
		return nil, fmt.Errorf("%w: a user cannot follow themselves", models.ErrInvalidOperation)
	}

	if err := g.requireUser(ctx, followerID); err != nil {
		return nil, err
	}
	if err := g.requireUser(ctx, followeeID); err != nil {
		return nil, err
	}

	following, err := g.db.ToggleFollowEdge(ctx, followerID, followeeID)
	if err != nil {
		return nil, storeError("ToggleFollow", "g.db.ToggleFollowEdge", err)
	}

	followees, err := g.db.GetFollowees(ctx, followerID)
	if err != nil {
		return nil, storeError("ToggleFollow", "g.db.GetFollowees", err)
	}

	if g.activity != nil {
		g.activity.EnqueueEvent(activitylog.NewFollowEvent(followerID, followeeID, following))
	}

	return &models.ToggleResult{
		Following: following,
		Followees: followees,
	}, nil
}

// ListFollowees returns every user followerID follows.
func (g *Graph) ListFollowees(ctx context.Context, followerID string) ([]string, error) {
	followerID, ok := models.NormalizeID(followerID)
	if !ok {
		return nil, models.ErrInvalidIdentifier
	}

	if err := g.requireUser(ctx, followerID); err != nil {
		return nil, err
	}

	followees, err := g.db.GetFollowees(ctx, followerID)
	if err != nil {
		return nil, storeError("ListFollowees", "g.db.GetFollowees", err)
	}

	return followees, nil
}

// IsFollowing reports whether viewerID follows subjectID.
func (g *Graph) IsFollowing(ctx context.Context, viewerID, subjectID string) (bool, error) {
	viewerID, subjectID, ok := normalizePair(viewerID, subjectID)
	if !ok {
		return false, models.ErrInvalidIdentifier
	}

	followees, err := g.db.GetFollowees(ctx, viewerID)
	if err != nil {
		return false, storeError("IsFollowing", "g.db.GetFollowees", err)
	}

	for _, followeeID := range followees {
		if followeeID == subjectID {
			return true, nil
		}
	}

	return false, nil
}

func normalizePair(first, second string) (string, string, bool) {
	first, ok := models.NormalizeID(first)
	if !ok {
		return "", "", false
	}
	second, ok = models.NormalizeID(second)
	if !ok {
		return "", "", false
	}

	return first, second, true
}

func (g *Graph) requireUser(ctx context.Context, userID string) error {
	_, err := g.db.GetUserByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	if err != nil {
		return storeError("requireUser", "g.db.GetUserByID", err)
	}

	return nil
}

func storeError(funcName, callee string, err error) error {
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidIdentifier) {
		return err
	}

	return fmt.Errorf(
		"%w: in internal/socialgraph/socialgraph.go/%s(): error while `%s()` calling: %w",
		models.ErrStoreUnavailable,
		funcName,
		callee,
		err,
	)
}
