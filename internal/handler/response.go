package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusride/internal/repository"
	"campusride/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidStudentID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidMessageID),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrInvalidSenderType),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		return http.StatusBadRequest

	// Authorization errors
	case errors.Is(err, service.ErrUnauthorizedCaller),
		errors.Is(err, service.ErrUnauthorizedSender):
		return http.StatusForbidden

	// Conflict errors - the request names a real resource but the
	// current state rejects the operation
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrSessionBusy),
		errors.Is(err, service.ErrRoomInactive),
		errors.Is(err, service.ErrDuplicateRoom),
		errors.Is(err, service.ErrDuplicateEntry),
		errors.Is(err, service.ErrMethodMismatch),
		errors.Is(err, service.ErrPolicyViolation),
		errors.Is(err, service.ErrAlreadyFinalized):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
