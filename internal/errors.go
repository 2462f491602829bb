package internal

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("Not Logged In")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// ErrUserMismatch is returned when a request names a user other than the one
// logged in.
var ErrUserMismatch = errors.New("User ID does not match the logged in user")

// ErrNotAdmin is returned for admin-only operations.
var ErrNotAdmin = errors.New("Not Admin")

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}
