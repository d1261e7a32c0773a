package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerAuthMiddleware guards the admin API with static API keys.
// A key is accepted as "Authorization: Bearer <key>" or "X-API-Key: <key>".
// With no keys configured every request is refused.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys = append(validKeys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(validKeys) == 0 {
				writeError(w, http.StatusForbidden, "admin API is disabled")
				return
			}

			token, ok := credential(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				writeError(w, http.StatusUnauthorized, "authorization header must use Bearer scheme")
				return
			}
			if !matchKey(validKeys, token) {
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// credential extracts the presented key. ok is false when no credential
// header is present; token is empty when the Authorization scheme is wrong.
func credential(r *http.Request) (token string, ok bool) {
	if k := r.Header.Get("X-API-Key"); k != "" {
		return k, true
	}
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(auth, bearerPrefix) {
		return "", true
	}
	return strings.TrimSpace(auth[len(bearerPrefix):]), true
}

func matchKey(keys [][]byte, token string) bool {
	t := []byte(token)
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, t)
	}
	return found == 1
}
