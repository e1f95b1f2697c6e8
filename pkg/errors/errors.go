package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors returned to clients with their message unchanged
var (
	ErrUserNotFound       = NewNotFoundError("user", "User not found")
	ErrEmailTaken         = NewAlreadyExistsError("user", "Email already exists")
	ErrUnauthenticated    = NewUnauthorizedError("Unauthenticated.")
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password")
)

// HTTPStatuser is implemented by errors that map onto an HTTP status code.
type HTTPStatuser interface {
	HTTPStatus() int
}

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError creates a new validation error
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

// HTTPStatus returns 422 Unprocessable Entity
func (e *ValidationError) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

// FromValidator converts validator.ValidationErrors into a *ValidationError.
// Any other error is returned unchanged.
func FromValidator(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		var msg string
		switch e.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", field)
		case "email":
			msg = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			msg = fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		default:
			msg = fmt.Sprintf("%s is invalid", field)
		}
		fields = append(fields, FieldError{Field: field, Message: msg})
	}
	return NewValidationError(fields...)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns 404 Not Found
func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

// AlreadyExistsError represents a resource already exists error
type AlreadyExistsError struct {
	Resource string
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// HTTPStatus returns 409 Conflict
func (e *AlreadyExistsError) HTTPStatus() int {
	return http.StatusConflict
}

// UnauthorizedError represents a failed authentication.
// The message is shown to clients as-is, so it must stay opaque.
type UnauthorizedError struct {
	Message string
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// Error implements the error interface
func (e *UnauthorizedError) Error() string {
	return e.Message
}

// HTTPStatus returns 401 Unauthorized
func (e *UnauthorizedError) HTTPStatus() int {
	return http.StatusUnauthorized
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns 500 Internal Server Error
func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// StatusOf returns the HTTP status carried by err, or 500 when err has none.
func StatusOf(err error) int {
	var s HTTPStatuser
	if errors.As(err, &s) {
		return s.HTTPStatus()
	}
	return http.StatusInternalServerError
}
