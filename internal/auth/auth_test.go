package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/travelboard/internal/models"
)

const testCookieName = "auth"

var testKey = []byte("test-signing-key")

func captureViewer(t *testing.T, a *Auth, prepare func(r *http.Request)) (string, bool) {
	t.Helper()

	var (
		viewerID string
		found    bool
	)
	handler := a.AuthenticateUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewerID, found = ViewerIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	prepare(req)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	return viewerID, found
}

func TestAuthenticateUser(t *testing.T) {
	a := New(testCookieName, testKey)
	userID := models.NewID()
	token, err := a.BuildJWTString(&Claims{UserID: userID})
	require.NoError(t, err)

	t.Run("authorization header", func(t *testing.T) {
		viewerID, found := captureViewer(t, a, func(r *http.Request) {
			r.Header.Set("Authorization", token)
		})
		assert.True(t, found)
		assert.Equal(t, userID, viewerID)
	})

	t.Run("bearer prefix", func(t *testing.T) {
		viewerID, found := captureViewer(t, a, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token)
		})
		assert.True(t, found)
		assert.Equal(t, userID, viewerID)
	})

	t.Run("cookie", func(t *testing.T) {
		viewerID, found := captureViewer(t, a, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
		})
		assert.True(t, found)
		assert.Equal(t, userID, viewerID)
	})

	t.Run("no token", func(t *testing.T) {
		_, found := captureViewer(t, a, func(*http.Request) {})
		assert.False(t, found)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, found := captureViewer(t, a, func(r *http.Request) {
			r.Header.Set("Authorization", "not-a-jwt")
		})
		assert.False(t, found)
	})
}

func TestGetUserIDFromToken(t *testing.T) {
	a := New(testCookieName, testKey)

	t.Run("foreign key", func(t *testing.T) {
		other := New(testCookieName, []byte("another-key"))
		token, err := other.BuildJWTString(&Claims{UserID: models.NewID()})
		require.NoError(t, err)

		_, err = a.GetUserIDFromToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := a.BuildJWTString(&Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
			UserID: models.NewID(),
		})
		require.NoError(t, err)

		_, err = a.GetUserIDFromToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed user id", func(t *testing.T) {
		token, err := a.BuildJWTString(&Claims{UserID: "user-1"})
		require.NoError(t, err)

		_, err = a.GetUserIDFromToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("upper-case user id is normalized", func(t *testing.T) {
		token, err := a.BuildJWTString(&Claims{UserID: "65F0000000000000000000AB"})
		require.NoError(t, err)

		userID, err := a.GetUserIDFromToken(token)
		require.NoError(t, err)
		assert.Equal(t, "65f0000000000000000000ab", userID)
	})
}
