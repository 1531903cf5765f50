package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/aidetect/internal/logger"
)

type contextKey string

const IdentityKey contextKey = "identity"

// Anonymous is the identity used when authentication is disabled.
const Anonymous = "anonymous"

// APIKeyAuth validates the API key from the Authorization or X-API-Key header.
// validKeys maps identity -> key; when it is empty every request passes as Anonymous.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(validKeys) == 0 {
				next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), Anonymous)))
				return
			}

			// Support "Bearer <key>", "<key>" and X-API-Key
			apiKey := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if apiKey == "" {
				apiKey = strings.TrimSpace(r.Header.Get("X-API-Key"))
			}
			if apiKey == "" {
				WriteError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			// constant-time comparison
			var identity string
			for id, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					identity = id
					break
				}
			}
			if identity == "" {
				WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

func withIdentity(ctx context.Context, identity string) context.Context {
	ctx = context.WithValue(ctx, IdentityKey, identity)
	l := logger.Nop().FromContext(ctx)
	return logger.NewContext(ctx, l.With(zap.String("identity", identity)))
}

// IdentityFromContext returns the authenticated caller, or "" outside APIKeyAuth.
func IdentityFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(IdentityKey).(string); ok {
		return id
	}
	return ""
}

// WriteError writes the JSON error envelope shared by every endpoint.
func WriteError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": msg})
}
