package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrDuplicateSubmission indicates the lecturer already submitted a claim for the current day.
var ErrDuplicateSubmission = errors.New("a claim has already been submitted today")

// ErrFileRejected indicates an uploaded file failed the extension or size checks.
var ErrFileRejected = errors.New("file rejected")

// ErrUnauthorizedPrincipal indicates the caller is authenticated but lacks the role or ownership required.
var ErrUnauthorizedPrincipal = errors.New("principal not authorized for this action")

// ErrInvalidStateTransition indicates the claim is not in a state that allows the requested change.
var ErrInvalidStateTransition = errors.New("invalid claim state transition")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
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

// Is lets errors.Is(err, ErrInternal) match any 5xx AppError.
func (e *AppError) Is(target error) bool {
	return target == ErrInternal && e.Code >= http.StatusInternalServerError
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
