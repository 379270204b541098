package types

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced to a client carries exactly one of these.
var (
	ErrValidation    = errors.New("validation error")
	ErrAuth          = errors.New("authentication error")
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrConflict      = errors.New("conflict")
	ErrStore         = errors.New("store error")
)

// Error is a classified error with a client-facing message
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches the error kind
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validationf returns an ErrValidation error
func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf returns an ErrNotFound error
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf returns an ErrConflict error
func Conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Authf returns an ErrAuth error
func Authf(format string, args ...any) error {
	return &Error{Kind: ErrAuth, Message: fmt.Sprintf(format, args...)}
}

// QuotaExceededf returns an ErrQuotaExceeded error
func QuotaExceededf(format string, args ...any) error {
	return &Error{Kind: ErrQuotaExceeded, Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a failure of the persistent store. The driver message is
// what clients see.
func StoreError(err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return &Error{Kind: ErrStore, Message: err.Error(), Err: err}
}

// Message returns the client-facing message of err
func Message(err error) string {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Message
	}
	return err.Error()
}
