package server

import (
	"net/http"
)

// adminAuthMiddleware rejects requests without a live admin session. The 401
// is deliberately distinct from other errors so the console can force a
// re-login.
func adminAuthMiddleware(admin AdminStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := adminFromRequest(r, admin); err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired admin session")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
