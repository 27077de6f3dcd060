package handler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cardenrich/internal/domain"
	"cardenrich/internal/middleware"
	"cardenrich/internal/records"
)

// APIResponse is the standard envelope for JSON responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var malformed *records.MalformedInputError
	switch {
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity, "MALFORMED_INPUT", malformed.Error()
	case errors.Is(err, domain.ErrMalformedInput):
		return http.StatusUnprocessableEntity, "MALFORMED_INPUT", "malformed input"
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusBadRequest, "MISSING_FILE", "file field is required"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "unsupported output format; allowed: csv, xlsx"
	case errors.Is(err, domain.ErrUnknownFieldSet):
		return http.StatusBadRequest, "UNKNOWN_FIELD_SET", "unknown field set; allowed: contact, full"
	case errors.Is(err, domain.ErrBatchFailure):
		return http.StatusInternalServerError, "BATCH_FAILURE", "the uploaded file could not be read"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, log *zap.Logger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Error("handler.internal_error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	RespondError(c, status, code, msg)
}
