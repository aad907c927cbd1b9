package handlers

import (
	"net/http"

	"carpool/internal/domain"
	"carpool/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// StatusFor maps a stable error code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case domain.CodeValidation, domain.CodeInvalidSeatCount:
		return http.StatusBadRequest
	case domain.CodeUnauthenticated:
		return http.StatusUnauthorized
	case domain.CodeNotAuthorized:
		return http.StatusForbidden
	case domain.CodeRideNotFound, domain.CodeBookingNotFound, domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidTransition, domain.CodeInsufficientCapacity, domain.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError maps domain errors to HTTP responses. Internal failures
// never leak their cause to the caller.
func RespondDomainError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	status := StatusFor(code)
	switch code {
	case domain.CodeInvariantViolation:
		respondError(c, status, code, "seat accounting check failed; nothing was changed", nil)
	case domain.CodeInternal:
		respondError(c, status, code, "internal error", nil)
	default:
		respondError(c, status, code, err.Error(), nil)
	}
}
