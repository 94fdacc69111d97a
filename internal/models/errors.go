package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Error codes carried by AppError.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
	CodeRateLimited  = "RATE_LIMITED"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewUnauthorizedError is returned when the caller is not authenticated.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewForbiddenError is returned when an authenticated actor is neither the
// owner nor an admin for a restricted operation.
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewUpstreamError wraps a failure of an external collaborator (media store)
// on a path where the failure is not tolerated.
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUpstream,
		Message: message,
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrorCode returns the AppError code found in err's chain, or "".
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND AppError or a gorm record miss.
func IsNotFound(err error) bool {
	return ErrorCode(err) == CodeNotFound || errors.Is(err, gorm.ErrRecordNotFound)
}

// StatusFor maps an error to the HTTP status the API responds with.
func StatusFor(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.StatusNotFound
	}
	switch ErrorCode(err) {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeUpstream:
		return fiber.StatusBadGateway
	case CodeRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
