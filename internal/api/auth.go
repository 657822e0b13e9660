package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
)

// callerHeader carries the resolved caller identity. The transport frontend
// (the chat bot) resolves raw platform users to stable ids before calling in.
const callerHeader = "X-Caller-ID"

// BearerAuth rejects requests whose Authorization header does not carry the
// shared API token. Applied to every route except /health and /search.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) || subtle.ConstantTimeCompare([]byte(auth[len(prefix):]), []byte(token)) != 1 {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// callerID extracts the caller identity header. Missing or malformed ids are
// a request error, not an authorization decision — that belongs to the gate.
func callerID(r *http.Request) (int64, bool) {
	raw := r.Header.Get(callerHeader)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
