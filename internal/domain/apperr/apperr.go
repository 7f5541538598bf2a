// Package apperr defines the error kinds surfaced by the workflow core.
//
// Domain packages build their named errors on top of these kinds so that the
// transport layer can map any failure with errors.Is without knowing the
// individual error values.
package apperr

import "errors"

var (
	ErrValidation    = errors.New("validation failed")
	ErrStateConflict = errors.New("state conflict")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
)

// Error carries a stable machine code alongside its kind.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validation(code, message string) *Error {
	return &Error{Kind: ErrValidation, Code: code, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: ErrStateConflict, Code: code, Message: message}
}

func Unauthorized(code, message string) *Error {
	return &Error{Kind: ErrUnauthorized, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: ErrNotFound, Code: code, Message: message}
}

// Kind returns a stable label for logging.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrStateConflict):
		return "state_conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "unexpected"
	}
}

// Code returns the machine code of the first *Error in the chain, or fallback.
func Code(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return fallback
}
