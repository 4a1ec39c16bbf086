package httpapi

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// RequireToken rejects requests that do not carry the configured
// bearer token in the Authorization header.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(header, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			if strings.TrimPrefix(header, bearerPrefix) != token {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
