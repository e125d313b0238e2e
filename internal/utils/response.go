// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stimjim-service/internal/model"
	"stimjim-service/internal/protocol"
)

// APIResponse represents standard API response structure
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError represents error information
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: getRequestID(c),
	}

	c.JSON(statusCode, response)
}

// ErrorResponse sends an error response
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	apiError := &APIError{
		Code:    getErrorCode(statusCode, err),
		Message: message,
	}

	if err != nil {
		apiError.Details = err.Error()
	}

	response := APIResponse{
		Success:   false,
		Message:   message,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: getRequestID(c),
	}

	c.JSON(statusCode, response)
}

// StatusForError maps domain errors onto HTTP status codes
func StatusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrTooManyStages),
		errors.Is(err, model.ErrIndexOutOfRange),
		errors.Is(err, model.ErrInvalidDirection),
		errors.Is(err, model.ErrInvalidPeriod),
		errors.Is(err, model.ErrInvalidDuration),
		errors.Is(err, model.ErrAmplitudeOutOfRange),
		errors.Is(err, model.ErrInvalidTarget),
		errors.Is(err, model.ErrInvalidOutputMode),
		errors.Is(err, protocol.ErrEmptyCommand):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrMalformedRecord):
		return http.StatusUnprocessableEntity
	case errors.Is(err, protocol.ErrNotOpen):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// getRequestID extracts request ID from context
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// getErrorCode prefers a domain code and falls back to the HTTP status
func getErrorCode(statusCode int, err error) string {
	switch {
	case err == nil:
	case errors.Is(err, model.ErrTooManyStages):
		return "TOO_MANY_STAGES"
	case errors.Is(err, model.ErrIndexOutOfRange):
		return "INDEX_OUT_OF_RANGE"
	case errors.Is(err, model.ErrInvalidDirection):
		return "INVALID_DIRECTION"
	case errors.Is(err, model.ErrMalformedRecord):
		return "MALFORMED_RECORD"
	case errors.Is(err, model.ErrAmplitudeOutOfRange):
		return "AMPLITUDE_OUT_OF_RANGE"
	case errors.Is(err, protocol.ErrNotOpen):
		return "DEVICE_NOT_CONNECTED"
	}

	switch statusCode {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case http.StatusInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "UNKNOWN_ERROR"
	}
}
