package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const sessionUserKey contextKey = "sessionUser"

// SessionVerifier checks a session token and returns the display name it
// was issued for.
type SessionVerifier interface {
	Verify(token string) (string, error)
}

// SessionAuth enforces a valid session token on protected endpoints and
// stores the user's display name in the request context.
func SessionAuth(sessions SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			user, err := sessions.Verify(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				http.Error(w, "invalid session token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), sessionUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated display name if present.
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(sessionUserKey).(string)
	return user, ok
}
