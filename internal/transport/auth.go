package transport

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware enforces a static bearer token.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			got := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if got == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
