package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ranjankr/ranjanchat/backend/internal/auth"
	"github.com/ranjankr/ranjanchat/backend/pkg/utils"
)

type contextKey string

const userIDKey contextKey = "userID"

// Auth rejects requests without a valid bearer token and injects the token's
// subject into the request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			userID, err := auth.VerifyToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id stored by Auth, or "".
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
