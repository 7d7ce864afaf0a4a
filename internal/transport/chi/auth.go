package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// defaultExemptPaths bypass authentication so probes and scrapers need no key.
var defaultExemptPaths = []string{"/health", "/metrics"}

// BearerAuthMiddleware validates "Authorization: Bearer <key>" against apiKeys.
// Empty keys are ignored; with no keys left authentication is disabled.
// Requests to exempt paths (default /health and /metrics) always pass.
func BearerAuthMiddleware(apiKeys []string, exempt ...string) func(http.Handler) http.Handler {
	var digests [][sha256.Size]byte
	for _, k := range apiKeys {
		if k != "" {
			digests = append(digests, sha256.Sum256([]byte(k)))
		}
	}

	if len(exempt) == 0 {
		exempt = defaultExemptPaths
	}
	exemptSet := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		exemptSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if len(digests) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptSet[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			switch {
			case auth == "":
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing authorization header")
				return
			case !strings.HasPrefix(auth, bearerPrefix):
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized,
					"authorization header must use Bearer scheme")
				return
			case !knownKey(digests, auth[len(bearerPrefix):]):
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// knownKey reports whether token matches one of digests. The comparison is constant-time.
func knownKey(digests [][sha256.Size]byte, token string) bool {
	d := sha256.Sum256([]byte(token))
	found := 0
	for i := range digests {
		found |= subtle.ConstantTimeCompare(digests[i][:], d[:])
	}
	return found == 1
}
