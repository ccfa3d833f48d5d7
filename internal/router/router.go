// Package router exposes the follow graph and the leaderboard over HTTP.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/travelboard/internal/auth"
	"github.com/patric-chuzhbe/travelboard/internal/gzippedhttp"
	"github.com/patric-chuzhbe/travelboard/internal/logger"
	"github.com/patric-chuzhbe/travelboard/internal/models"
)

type socialService interface {
	ToggleFollow(ctx context.Context, followerID, followeeID string) (*models.ToggleFollowResponse, error)
	ListFollowees(ctx context.Context, followerID string) (*models.FolloweesResponse, error)
	GetLeaderboard(ctx context.Context, viewerID string, limit int) (models.UserSummaries, error)
	GetFriends(ctx context.Context, viewerEmail string) (models.UserSummaries, error)
	SearchUsers(ctx context.Context, pattern, viewerID string) (models.UserSummaries, error)
	GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error)
	Ping(ctx context.Context) error
}

type authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
}

type subnetGuard interface {
	Guard(h http.Handler) http.Handler
}

type Router struct {
	svc socialService
}

// New builds the chi router. Every route runs behind the logging, compression
// and viewer identification middlewares; the stats route is additionally
// restricted by guard.
func New(svc socialService, authMiddleware authenticator, guard subnetGuard) *chi.Mux {
	myRouter := Router{svc: svc}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.GzipResponse,
		authMiddleware.AuthenticateUser,
	)

	router.Get(`/ping`, myRouter.GetPing)

	router.Route(`/friends`, func(r chi.Router) {
		r.Get(`/`, myRouter.GetFriends)
		r.Post(`/follow/{friendID}`, myRouter.PostFriendsfollow)
		r.Get(`/following`, myRouter.GetFriendsfollowing)
		r.Get(`/search`, myRouter.GetFriendssearch)
		r.Get(`/leaderboard`, myRouter.GetFriendsleaderboard)
	})

	router.With(guard.Guard).Get(`/api/internal/stats`, myRouter.GetApiinternalstats)

	return router
}

// viewerID prefers the authenticated viewer and falls back to the user_id
// query parameter.
func viewerID(request *http.Request) string {
	if id, ok := auth.ViewerIDFromContext(request.Context()); ok {
		return id
	}

	return request.URL.Query().Get("user_id")
}

// PostFriendsfollow toggles the viewer's follow edge towards {friendID}.
func (rtr *Router) PostFriendsfollow(response http.ResponseWriter, request *http.Request) {
	followerID := viewerID(request)
	if followerID == "" {
		writeError(response, request, fmt.Errorf("%w: follower is not specified", models.ErrInvalidIdentifier))
		return
	}

	result, err := rtr.svc.ToggleFollow(request.Context(), followerID, chi.URLParam(request, "friendID"))
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, result)
}

func (rtr *Router) GetFriendsfollowing(response http.ResponseWriter, request *http.Request) {
	followerID := viewerID(request)
	if followerID == "" {
		writeError(response, request, fmt.Errorf("%w: user is not specified", models.ErrInvalidIdentifier))
		return
	}

	result, err := rtr.svc.ListFollowees(request.Context(), followerID)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, result)
}

// GetFriends lists everybody but the user registered with the email query
// parameter.
func (rtr *Router) GetFriends(response http.ResponseWriter, request *http.Request) {
	result, err := rtr.svc.GetFriends(request.Context(), request.URL.Query().Get("email"))
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, result)
}

func (rtr *Router) GetFriendssearch(response http.ResponseWriter, request *http.Request) {
	result, err := rtr.svc.SearchUsers(
		request.Context(),
		request.URL.Query().Get("username"),
		viewerID(request),
	)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, result)
}

// GetFriendsleaderboard accepts an optional non-negative limit; a missing or
// zero limit returns everybody.
func (rtr *Router) GetFriendsleaderboard(response http.ResponseWriter, request *http.Request) {
	limit := 0
	if rawLimit := request.URL.Query().Get("limit"); rawLimit != "" {
		var err error
		limit, err = strconv.Atoi(rawLimit)
		if err != nil {
			writeError(response, request, fmt.Errorf("%w: limit %q is not a number", models.ErrInvalidOperation, rawLimit))
			return
		}
	}

	result, err := rtr.svc.GetLeaderboard(request.Context(), viewerID(request), limit)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, result)
}

func (rtr *Router) GetApiinternalstats(response http.ResponseWriter, request *http.Request) {
	stats, err := rtr.svc.GetInternalStats(request.Context())
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

func (rtr *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := rtr.svc.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `rtr.svc.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidIdentifier), errors.Is(err, models.ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides the details of server side failures from the client.
func writeError(response http.ResponseWriter, request *http.Request, err error) {
	code := statusCodeFor(err)
	detail := err.Error()
	if code >= http.StatusInternalServerError {
		logger.Log.Errorln(
			"request failed",
			"request_id", logger.RequestIDFromContext(request.Context()),
			zap.Error(err),
		)
		detail = http.StatusText(code)
	}

	writeJSON(response, code, models.ErrorResponse{Detail: detail})
}

func writeJSON(response http.ResponseWriter, code int, body interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(code)
	if err := json.NewEncoder(response).Encode(body); err != nil {
		logger.Log.Debugln("Error calling the `json.NewEncoder(response).Encode()`: ", zap.Error(err))
	}
}
