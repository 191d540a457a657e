package middleware

import (
	"context"
	"net/http"
	"strings"

	"eventvote/internal/service"
	"eventvote/pkg/errors"
	"eventvote/pkg/logger"

	"github.com/google/uuid"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// ClaimsContextKey is the key for the verified token claims in context
	ClaimsContextKey ContextKey = "claims"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// TokenParser validates a bearer token
type TokenParser interface {
	ParseToken(token string) (*service.Claims, error)
}

// Auth requires a valid team token and stores its claims in the context
func Auth(parser TokenParser, logger *logger.Logger) func(http.Handler) http.Handler {
	return requireRole(parser, service.RoleTeam, logger)
}

// Admin requires a valid admin token
func Admin(parser TokenParser, logger *logger.Logger) func(http.Handler) http.Handler {
	return requireRole(parser, service.RoleAdmin, logger)
}

func requireRole(parser TokenParser, role string, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				errors.Write(w, errors.NewAuthenticationError("Authorization header is required"), requestID)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				errors.Write(w, errors.NewAuthenticationError("Invalid authorization header format"), requestID)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				errors.Write(w, errors.NewAuthenticationError("Token is required"), requestID)
				return
			}

			claims, err := parser.ParseToken(token)
			if err != nil {
				logger.WithError(err).WithField("request_id", requestID).Info("Token validation failed")
				errors.Write(w, errors.NewAuthenticationError("Invalid or expired token"), requestID)
				return
			}

			if claims.Role != role {
				errors.Write(w, errors.NewAuthorizationError("Insufficient permissions"), requestID)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims returns the verified claims, or nil outside authenticated routes
func GetClaims(ctx context.Context) *service.Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*service.Claims)
	return claims
}

// GetTeamID returns the authenticated team id
func GetTeamID(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.TeamID
	}
	return ""
}

// RequestID adds a unique request ID to each request. An incoming
// X-Request-ID header is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}
