// Package middleware provides HTTP middleware for the service.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/itemvault/itemvault/internal/app/services/auth"
	"github.com/itemvault/itemvault/internal/errors"
	"github.com/itemvault/itemvault/pkg/logger"
)

type contextKey string

const userIDKey contextKey = "user_id"

// AuthMiddleware verifies bearer tokens and attaches the resolved user id to
// the request context. It is a pure gate: no mutation, no state.
type AuthMiddleware struct {
	verifier auth.TokenVerifier
	logger   *logger.Logger
}

// NewAuthMiddleware creates an authentication middleware.
func NewAuthMiddleware(verifier auth.TokenVerifier, log *logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.NewDefault("auth-middleware")
	}
	return &AuthMiddleware{verifier: verifier, logger: log}
}

// Handler returns the middleware handler.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respondError(w, errors.Unauthorized("Missing Authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.respondError(w, errors.Unauthorized("Invalid Authorization header format"))
			return
		}

		userID, err := m.verifier.VerifyToken(parts[1])
		if err != nil {
			m.logger.WithError(err).WithField("path", r.URL.Path).Warn("token validation failed")
			svcErr := errors.GetServiceError(err)
			if svcErr == nil {
				svcErr = errors.InvalidToken(err)
			}
			m.respondError(w, svcErr)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) respondError(w http.ResponseWriter, err *errors.ServiceError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Message})
}

// GetUserID extracts the authenticated user id from the context, or "".
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID returns a context carrying an authenticated user id. Used by
// tests that exercise handlers below the middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
