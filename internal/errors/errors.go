package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrListingNotFound is returned when a listing id has no matching record.
	ErrListingNotFound = errors.New("Listing not found!")
	// ErrUserNotFound is returned when a user id has no matching record.
	ErrUserNotFound = errors.New("User not found!")
	// ErrImageNotFound is returned when an image id has no stored file.
	ErrImageNotFound = errors.New("Image not found!")
	// ErrUserAlreadyExists is returned when the email is already registered.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// Error codes carried in the response envelope.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse is the error envelope written for every failed request.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// Validation reports malformed, missing or out-of-range input.
func Validation(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, CodeValidation)
}

// Unauthorized reports a missing identity or a self-only rule violation.
func Unauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, CodeUnauthorized)
}

// Forbidden reports a caller that is not the owner of the resource.
func Forbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, CodeForbidden)
}

// NotFound reports an id without a matching record.
func NotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, CodeNotFound)
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, CodeConflict)
}

// CodeForStatus returns the envelope code used for an HTTP status.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	}
	return CodeInternal
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success:    false,
		StatusCode: e.StatusCode,
		Message:    e.Message,
		Code:       e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become a 500
// whose message does not leak the cause.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, ErrListingNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, ErrImageNotFound):
		return NotFound(err.Error())
	case errors.Is(err, ErrUserAlreadyExists):
		return Conflict(err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidRefreshToken):
		return Unauthorized(err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "Internal Server Error", CodeInternal)
	}
}
