package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"notes-api/auth"

	"go.uber.org/zap"
)

type contextKey string

const userIDKey contextKey = "userID"

// WithUserID returns a context carrying the verified subject identifier.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

// UserIDFromContext extracts the verified subject identifier set by
// RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok
}

// RequireAuth extracts the bearer credential from the Authorization header,
// verifies it, and stores the caller's uid in the request context. The
// "Bearer " prefix is optional; a bare token is accepted as-is.
func RequireAuth(verifier auth.Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondUnauthorized(w, "Authorization header missing")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			uid, err := verifier.Verify(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrExpiredToken):
					respondUnauthorized(w, "Authentication token has expired")
				case errors.Is(err, auth.ErrInvalidToken):
					respondUnauthorized(w, "Invalid authentication token")
				default:
					logger.Error("Authentication error", zap.Error(err))
					respondUnauthorized(w, "Authentication failed")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":       message,
		"status_code": http.StatusUnauthorized,
	})
}
