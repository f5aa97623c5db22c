package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/cleanbook/scheduler-backend/internal/services"
	"github.com/cleanbook/scheduler-backend/pkg/jwt"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserContextKey is the key used to store the resolved caller in Gin context
const UserContextKey = "user"

// CallerResolver turns validated token claims into the current caller
type CallerResolver interface {
	ResolveCaller(ctx context.Context, claims *jwt.Claims) (*models.Caller, error)
}

// AuthMiddleware validates the bearer token and resolves the caller against
// the identity store, so deleted accounts and revoked roles take effect
// immediately.
func AuthMiddleware(jwtService *jwt.Service, resolver CallerResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := logrus.Fields{
			"path": c.Request.URL.Path,
			"ip":   c.ClientIP(),
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.WithFields(fields).Debug("AUTH FAILED: Missing authorization header")
			abortUnauthorized(c, "unauthorized", "Authorization header is required", "MISSING_AUTH_HEADER")
			return
		}

		// Check Bearer token format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			logger.WithFields(fields).Debug("AUTH FAILED: Invalid auth format")
			abortUnauthorized(c, "unauthorized", "Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			logger.WithFields(fields).Debug("AUTH FAILED: Empty token")
			abortUnauthorized(c, "unauthorized", "Token cannot be empty", "INVALID_AUTH_FORMAT")
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				logger.WithFields(fields).Debug("AUTH FAILED: Token expired")
				abortUnauthorized(c, "token_expired", "Access token has expired. Please refresh your token.", "TOKEN_EXPIRED")
			} else {
				logger.WithFields(fields).WithError(err).Debug("AUTH FAILED: Invalid token")
				abortUnauthorized(c, "invalid_token", "Invalid access token", "INVALID_TOKEN")
			}
			return
		}

		caller, err := resolver.ResolveCaller(c.Request.Context(), claims)
		if err != nil {
			if services.KindOf(err) != services.KindUnauthorized {
				abortInternal(c, logger, fields, err)
				return
			}
			logger.WithFields(fields).WithError(err).Warn("AUTH FAILED: Caller could not be resolved")
			abortUnauthorized(c, "unauthorized", "User or employee not found", "UNKNOWN_CALLER")
			return
		}

		c.Set(UserContextKey, *caller)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, errorKey, message, code string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   errorKey,
		"message": message,
		"code":    code,
	})
}

// abortInternal reports a store or runtime failure during caller resolution.
// The cause chain is logged and sent to Sentry; the client gets a generic 500.
func abortInternal(c *gin.Context, logger *logrus.Logger, fields logrus.Fields, err error) {
	fields["error"] = err.Error()
	for i, cause := 0, errors.Unwrap(err); cause != nil; i, cause = i+1, errors.Unwrap(cause) {
		fields[fmt.Sprintf("cause_%d", i)] = cause.Error()
	}
	logger.WithFields(fields).Error("AUTH FAILED: Caller resolution failed with internal error")

	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   string(services.KindInternal),
		"message": "An internal error occurred. Please try again later.",
		"code":    "INTERNAL_ERROR",
	})
}

// RequireRole creates a middleware that checks if the caller has any of the
// given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, exists := GetCaller(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found. Auth middleware may not be applied.",
				"code":    "MISSING_USER_CONTEXT",
			})
			return
		}

		for _, role := range roles {
			if caller.HasRole(role) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "You don't have permission to access this resource",
			"code":    "INSUFFICIENT_PERMISSIONS",
		})
	}
}

// GetCaller retrieves the resolved caller from Gin context
func GetCaller(c *gin.Context) (models.Caller, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return models.Caller{}, false
	}

	caller, ok := value.(models.Caller)
	if !ok {
		return models.Caller{}, false
	}

	return caller, true
}

// MustGetCaller retrieves the caller or panics (use only after AuthMiddleware)
func MustGetCaller(c *gin.Context) models.Caller {
	caller, exists := GetCaller(c)
	if !exists {
		panic("user context not found - ensure AuthMiddleware is applied")
	}
	return caller
}
