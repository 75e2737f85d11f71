package middleware

import (
	"context"
	"net/http"
	"strings"

	"complipilot/internal/util"

	"github.com/rs/zerolog"
)

// Injected key type to avoid context collisions
type contextKey string

const UserContextKey = contextKey("user")

// UserID returns the authenticated subject stored by AuthMiddleware, or ""
// when the request is unauthenticated.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserContextKey).(string)
	return id
}

// AuthMiddleware verifies the Bearer token and stores the subject in the
// request context. Failures are answered with a JSON error body; clients
// never receive an HTML error page.
func AuthMiddleware(jwtSecret string, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("middleware", "auth").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Warn().Str("path", r.URL.Path).Msg("Authorization header missing")
				writeAuthError(w, "Authorization header missing")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn().Str("path", r.URL.Path).Msg("Invalid authorization header")
				writeAuthError(w, "Invalid authorization header")
				return
			}
			claims, err := util.ValidateJWT(parts[1], jwtSecret)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Invalid token")
				writeAuthError(w, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
