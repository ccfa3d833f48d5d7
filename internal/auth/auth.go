// Package auth resolves the viewer of a request from a signed JWT carried in
// the Authorization header or in a cookie. Identification is optional: a
// request without a valid token simply has no viewer.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/travelboard/internal/logger"
	"github.com/patric-chuzhbe/travelboard/internal/models"
)

// Auth parses and issues viewer tokens.
type Auth struct {
	// authCookieName is the name of the cookie used to store the JWT.
	authCookieName string

	// signingSecretKey is the key used to sign JWTs.
	signingSecretKey []byte
}

// Claims represents the JWT claims used by the system.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// ViewerIDKey is the context key under which the viewer's user id is stored.
const ViewerIDKey ContextKey = "viewerID"

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// claims checks.
var ErrInvalidToken = errors.New("invalid token")

func New(authCookieName string, signingSecretKey []byte) *Auth {
	return &Auth{
		authCookieName:   authCookieName,
		signingSecretKey: signingSecretKey,
	}
}

// ViewerIDFromContext returns the viewer stored by AuthenticateUser or by the
// gRPC auth interceptor.
func ViewerIDFromContext(ctx context.Context) (string, bool) {
	viewerID, ok := ctx.Value(ViewerIDKey).(string)
	return viewerID, ok && viewerID != ""
}

// AuthenticateUser stores the viewer id in the request context when the
// request carries a valid token. Requests without one pass through untouched.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		tokenString := a.getTokenStringFromAuthorizationHeaderOrCookie(request)
		if tokenString == "" {
			h.ServeHTTP(response, request)
			return
		}

		viewerID, err := a.GetUserIDFromToken(tokenString)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.GetUserIDFromToken()`: ", zap.Error(err))
			h.ServeHTTP(response, request)
			return
		}

		ctx := context.WithValue(request.Context(), ViewerIDKey, viewerID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

func (a *Auth) getTokenStringFromAuthorizationHeaderOrCookie(request *http.Request) string {
	tokenString := strings.TrimPrefix(request.Header.Get("Authorization"), "Bearer ")
	if tokenString != "" {
		return tokenString
	}
	cookie, err := request.Cookie(a.authCookieName)
	if err == nil {
		tokenString = cookie.Value
	}

	return tokenString
}

// GetUserIDFromToken validates tokenString and returns the user id it carries.
// The id must be a well-formed identifier.
func (a *Auth) GetUserIDFromToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		strings.TrimPrefix(tokenString, "Bearer "),
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingSecretKey, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	userID, ok := models.NormalizeID(claims.UserID)
	if !ok {
		return "", ErrInvalidToken
	}

	return userID, nil
}

// BuildJWTString signs claims with HS256.
func (a *Auth) BuildJWTString(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(a.signingSecretKey)
	if err != nil {
		return "", fmt.Errorf("in internal/auth/auth.go/BuildJWTString(): error while `token.SignedString()` calling: %w", err)
	}

	return tokenString, nil
}
