package httpx

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vulntor/siteprint/pkg/config"
	"github.com/vulntor/siteprint/pkg/server/api"
)

// Auth returns a middleware that enforces bearer token authentication on API routes.
//
// Behavior:
//   - With an empty cfg.AuthToken every request passes
//   - Only paths under /api/ are checked; /healthz, /readyz and /metrics stay open
//   - Returns 401 Unauthorized with a JSON error when the token is missing or wrong
//
// Example header: Authorization: Bearer secret-token-12345
func Auth(cfg config.ServerConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.AuthToken == "" {
			return next
		}
		want := []byte(cfg.AuthToken)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			token := extractBearerToken(r)
			if token == "" {
				log.Warn().
					Str("component", "auth").
					Str("path", r.URL.Path).
					Msg("Missing authorization header")
				api.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized", "AUTH_REQUIRED", "Missing authorization header")
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), want) != 1 {
				log.Warn().
					Str("component", "auth").
					Str("path", r.URL.Path).
					Msg("Invalid token")
				api.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized", "AUTH_INVALID", "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken extracts the token from Authorization: Bearer <token> header
func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
