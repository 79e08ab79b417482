package common

import (
	"net/http"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NotFound builds the canonical 404 error for a missing resource.
func NotFound(resource string, err error) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: resource + " not found", HTTPStatus: http.StatusNotFound, Err: err}
}

// BadRequest builds a 400 error scoped to a single request field.
func BadRequest(field, message string, err error) *AppError {
	return &AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details:    map[string]any{"field": field},
	}
}

// Conflict builds a 409 error, used for stale version stamps.
func Conflict(message string, err error) *AppError {
	return &AppError{Code: "CONFLICT", Message: message, HTTPStatus: http.StatusConflict, Err: err}
}

// ValidationErrors maps a field name to the message explaining why it was rejected.
type ValidationErrors map[string]string

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	return "validation failed"
}

// Add records a message for field unless one is already present.
func (v ValidationErrors) Add(field, message string) {
	if _, ok := v[field]; ok {
		return
	}
	v[field] = message
}

// Empty reports whether no field failed.
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// AsAppError converts the field map into a 422 response error.
func (v ValidationErrors) AsAppError() *AppError {
	return &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "one or more fields are invalid",
		HTTPStatus: http.StatusUnprocessableEntity,
		Err:        v,
		Details:    map[string]string(v),
	}
}
