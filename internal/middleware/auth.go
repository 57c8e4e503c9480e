package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/echomind/echomind-backend/internal/auth"
	"github.com/echomind/echomind-backend/internal/models"
)

// UserResolver maps a token's user id to a live user record.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type userContextKey struct{}

// RequireAuth verifies the session cookie and attaches the resolved user to
// the request context. Tokens for users that no longer exist are rejected.
func RequireAuth(secret []byte, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			userID, err := auth.GetUserIDFromToken(cookie.Value, secret)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user attached by RequireAuth.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*models.User)
	return user, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Unauthorized: invalid or missing session",
	})
}
