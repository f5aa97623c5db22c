package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cleanbook/scheduler-backend/internal/services"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

// SuccessResponse represents a plain success response
type SuccessResponse struct {
	Message string `json:"message"`
}

const internalErrorMessage = "An internal error occurred. Please try again later."

var kindStatus = map[services.ErrorKind]int{
	services.KindNotFound:         http.StatusNotFound,
	services.KindInvalidArgument:  http.StatusBadRequest,
	services.KindConflict:         http.StatusConflict,
	services.KindForbidden:        http.StatusForbidden,
	services.KindUnauthorized:     http.StatusUnauthorized,
	services.KindValidationFailed: http.StatusBadRequest,
	services.KindRateLimited:      http.StatusTooManyRequests,
	services.KindInternal:         http.StatusInternalServerError,
}

var kindCode = map[services.ErrorKind]string{
	services.KindNotFound:         "NOT_FOUND",
	services.KindInvalidArgument:  "INVALID_ARGUMENT",
	services.KindConflict:         "CONFLICT",
	services.KindForbidden:        "FORBIDDEN",
	services.KindUnauthorized:     "UNAUTHORIZED",
	services.KindValidationFailed: "VALIDATION_FAILED",
	services.KindRateLimited:      "RATE_LIMITED",
	services.KindInternal:         "INTERNAL_ERROR",
}

// respondError writes the JSON error for a service failure. Internal
// failures are logged with their full cause chain and reported to Sentry,
// but the client only sees a generic message.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	response := ErrorResponse{
		Error: string(kind),
		Code:  kindCode[kind],
	}

	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		response.Message = svcErr.Message
		response.Details = svcErr.Details
	}

	if kind == services.KindInternal {
		fields := logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"error":  err.Error(),
		}
		for i, cause := 0, errors.Unwrap(err); cause != nil; i, cause = i+1, errors.Unwrap(cause) {
			fields[fmt.Sprintf("cause_%d", i)] = cause.Error()
		}
		logger.WithFields(fields).Error("Request failed with internal error")

		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}

		response.Message = internalErrorMessage
		response.Details = nil
	}

	var rateLimitErr *services.RateLimitError
	if errors.As(err, &rateLimitErr) {
		retryAfter := int(time.Until(rateLimitErr.RetryAfter).Seconds()) + 1
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
	}

	c.JSON(status, response)
}

// respondBadRequest writes a 400 for a body or parameter that failed binding
func respondBadRequest(c *gin.Context, message string, err error) {
	response := ErrorResponse{
		Error:   "invalid_request",
		Message: message,
		Code:    "INVALID_REQUEST",
	}
	if err != nil {
		response.Details = []string{err.Error()}
	}
	c.JSON(http.StatusBadRequest, response)
}

// parseIDParam reads a positive integer path parameter
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid "+name+" parameter", nil)
		return 0, false
	}
	return id, true
}
