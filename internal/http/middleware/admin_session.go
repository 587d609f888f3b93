package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

// SessionChecker reports whether a request carries an accepted admin session.
type SessionChecker interface {
	Check(ctx context.Context, r *http.Request) bool
}

// RequireAdminSession rejects requests without an admin session before the
// wrapped handler runs.
func RequireAdminSession(checker SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if checker == nil || !checker.Check(r.Context(), r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
