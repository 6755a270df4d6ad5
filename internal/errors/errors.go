package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeConflict   = "CONFLICT"

	ErrCodeRunNotFound    = "RUN_NOT_FOUND"
	ErrCodeRunInactive    = "RUN_INACTIVE"
	ErrCodeRunExpired     = "RUN_EXPIRED"
	ErrCodePlayerNotInRun = "PLAYER_NOT_IN_RUN"
	ErrCodePlayerNotFound = "PLAYER_NOT_FOUND"
	ErrCodeStateNotFound  = "STATE_NOT_FOUND"
)

// Sentinels for errors.Is checks. AppError.Is compares codes, so a
// constructed error with extra detail still matches its sentinel.
var (
	ErrRunNotFound    = &AppError{Code: ErrCodeRunNotFound}
	ErrRunInactive    = &AppError{Code: ErrCodeRunInactive}
	ErrRunExpired     = &AppError{Code: ErrCodeRunExpired}
	ErrPlayerNotInRun = &AppError{Code: ErrCodePlayerNotInRun}
	ErrPlayerNotFound = &AppError{Code: ErrCodePlayerNotFound}
	ErrStateNotFound  = &AppError{Code: ErrCodeStateNotFound}
	ErrConflict       = &AppError{Code: ErrCodeConflict}
	ErrNotFound       = &AppError{Code: ErrCodeNotFound}
	ErrValidation     = &AppError{Code: ErrCodeValidation}
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "RUN_EXPIRED")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// As extracts an *AppError from err, wrapping anything else as internal.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewConflictError is returned when an answer kept losing optimistic
// concurrency races after all retry attempts.
func NewConflictError(attempts int, err error) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: fmt.Sprintf("concurrent update, gave up after %d attempts", attempts),
		Status:  http.StatusConflict,
		Err:     err,
	}
}

func NewRunNotFoundError(ref string) *AppError {
	return &AppError{
		Code:    ErrCodeRunNotFound,
		Message: fmt.Sprintf("run not found: %s", ref),
		Status:  http.StatusNotFound,
	}
}

func NewRunInactiveError(runID string) *AppError {
	return &AppError{
		Code:    ErrCodeRunInactive,
		Message: fmt.Sprintf("run %s is no longer active", runID),
		Status:  http.StatusBadRequest,
	}
}

func NewRunExpiredError(runID string) *AppError {
	return &AppError{
		Code:    ErrCodeRunExpired,
		Message: fmt.Sprintf("run %s has expired", runID),
		Status:  http.StatusGone,
	}
}

func NewPlayerNotInRunError(playerID, runID string) *AppError {
	return &AppError{
		Code:    ErrCodePlayerNotInRun,
		Message: fmt.Sprintf("player %s not found in run %s", playerID, runID),
		Status:  http.StatusNotFound,
	}
}

func NewPlayerNotFoundError(playerID string) *AppError {
	return &AppError{
		Code:    ErrCodePlayerNotFound,
		Message: fmt.Sprintf("player not found: %s", playerID),
		Status:  http.StatusNotFound,
	}
}

func NewStateNotFoundError(playerID, cardID string) *AppError {
	return &AppError{
		Code:    ErrCodeStateNotFound,
		Message: fmt.Sprintf("card state not found for player %s, card %s", playerID, cardID),
		Status:  http.StatusNotFound,
	}
}
