package middleware

import (
	"net/http"
	"strings"
)

// SessionVerifier reports whether a presented session token is valid.
type SessionVerifier interface {
	Verify(token string) bool
}

// SessionAuth returns middleware that requires a valid session cookie on
// every request except the listed skip prefixes (health check, login).
// cookieName is the session cookie to read.
func SessionAuth(verifier SessionVerifier, cookieName string, skip ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range skip {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			cookie, err := r.Cookie(cookieName)
			if err != nil || !verifier.Verify(cookie.Value) {
				writeUnauthorized(w, "authentication required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeUnauthorized sends a 401 response with a JSON error body.
func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
