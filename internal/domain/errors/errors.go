package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation failed")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrConflict          = errors.New("conflicting record state")
	ErrTransient         = errors.New("transient storage failure")
	ErrDeadlinePassed    = errors.New("application deadline has passed")
)

// AppError represents an application error with an HTTP status
type AppError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Err: err}
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "ERR_NOT_FOUND", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "ERR_BAD_REQUEST", message, ErrBadRequest)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "ERR_UNAUTHORIZED", message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "ERR_FORBIDDEN", message, ErrForbidden)
}

// Conflict reports that the record changed since the client's last known
// state. The caller should reload authoritative state rather than retry.
func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, "ERR_CONFLICT", message, ErrConflict)
}

// Transient reports a recoverable network/storage failure; safe to retry.
func Transient(err error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, "ERR_TRANSIENT", "temporary storage failure", fmt.Errorf("%w: %v", ErrTransient, err))
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "ERR_INTERNAL", "internal server error", err)
}

// ValidationError carries per-field failures from form validation.
// It stays local to the request and never reaches the persistence layer.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError wraps per-field messages
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// IllegalTransitionError reports a status change outside the transition
// table. Distinct from validation: it indicates stale client state or an
// ordering bug, not bad user input.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition: %s -> %s", e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// NewIllegalTransition creates an illegal transition error
func NewIllegalTransition(from, to string) *IllegalTransitionError {
	return &IllegalTransitionError{From: from, To: to}
}
