package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/spine/api/internal/core/ports"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	userKey   contextKey = "user"
)

// Authenticator resolves the Authorization header to a caller identity
// before protected handlers run. The header value is the raw access token;
// a "Bearer " prefix is tolerated.
func Authenticator(authService ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(raw, "Bearer ")

			user, err := authService.VerifyAccess(r.Context(), token)
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			ctx = context.WithValue(ctx, userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
