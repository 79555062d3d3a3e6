package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/postly/backend/internal/authz"
	"github.com/postly/backend/internal/usecase"
)

type contextKey string

const userIDKey contextKey = "userID"

type AuthMiddleware struct {
	tokens *usecase.TokenService
}

func NewAuthMiddleware(tokens *usecase.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate requires a valid bearer access token and stores the subject
// id in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "authorization header required")
			return
		}

		userID, err := m.tokens.VerifyAccess(token)
		if err != nil {
			if errors.Is(err, usecase.ErrTokenExpired) {
				unauthorized(w, "token expired")
			} else {
				unauthorized(w, "invalid token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

// GetSubject resolves the caller to an authorization subject; requests that
// did not pass Authenticate resolve to the anonymous subject.
func GetSubject(ctx context.Context) authz.Subject {
	if userID, ok := GetUserID(ctx); ok {
		return authz.Authenticated(userID)
	}
	return authz.Anonymous()
}
