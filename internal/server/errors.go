package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	referencedomain "github.com/smallbiznis/atelier/internal/reference/domain"
	signupdomain "github.com/smallbiznis/atelier/internal/signup/domain"
	"github.com/smallbiznis/atelier/pkg/db/pagination"
	"gorm.io/gorm"
)

// errorResponse keeps the registration contract: every failure carries
// success=false and a client-safe message.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Type    string `json:"type"`
}

var (
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

const (
	messageRateLimited = "too many registration attempts, please try again later"
	messageNotFound    = "not found"
	messageInternal    = "internal server error"
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Type: "internal_error", Message: messageInternal}
	}

	var vErr *signupdomain.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorResponse{
			Type:    "validation_error",
			Message: vErr.Message,
			Field:   vErr.Field,
		}
	}

	var perr *signupdomain.ProvisioningError
	if errors.As(err, &perr) {
		status := http.StatusInternalServerError
		switch perr.Kind {
		case signupdomain.KindDuplicateEmail, signupdomain.KindInvalidReference:
			status = http.StatusBadRequest
		}
		return status, errorResponse{Type: string(perr.Kind), Message: perr.UserMessage()}
	}

	switch {
	case errors.Is(err, signupdomain.ErrMalformedRequest),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pagination.ErrInvalidPageToken):
		return http.StatusBadRequest, errorResponse{Type: "invalid_request", Message: signupdomain.MessageMalformed}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorResponse{Type: "rate_limited", Message: messageRateLimited}
	case isNotFoundError(err):
		return http.StatusNotFound, errorResponse{Type: "not_found", Message: messageNotFound}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorResponse{Type: "service_unavailable", Message: signupdomain.MessageFailed}
	default:
		return http.StatusInternalServerError, errorResponse{Type: "internal_error", Message: messageInternal}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, referencedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog returns the error type and code put on the request log line.
func classifyErrorForLog(err error) (string, string) {
	var vErr *signupdomain.ValidationError
	if errors.As(err, &vErr) {
		return "validation_error", vErr.Field
	}
	var perr *signupdomain.ProvisioningError
	if errors.As(err, &perr) {
		return string(perr.Kind), string(perr.Step)
	}
	_, payload := mapError(err)
	return payload.Type, payload.Type
}
