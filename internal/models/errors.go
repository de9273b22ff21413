package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the HTTP boundary can pick a status code.
type ErrorKind string

const (
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindValidation        ErrorKind = "VALIDATION_ERROR"
	KindSignatureMismatch ErrorKind = "SIGNATURE_MISMATCH"
	KindUpstream          ErrorKind = "UPSTREAM_FAILURE"
)

// AppError is a domain error with a user-visible message.
type AppError struct {
	Kind    ErrorKind
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

// Is matches any *AppError of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found error regardless of message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Kind == e.Kind
}

// NewAppError creates a domain error of the given kind.
func NewAppError(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Kind sentinels for errors.Is.
var (
	ErrUnauthorized      = &AppError{Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden         = &AppError{Kind: KindForbidden, Message: "Forbidden"}
	ErrNotFound          = &AppError{Kind: KindNotFound, Message: "Not found"}
	ErrValidation        = &AppError{Kind: KindValidation, Message: "Validation failed"}
	ErrSignatureMismatch = &AppError{Kind: KindSignatureMismatch, Message: "Invalid signature"}
	ErrUpstream          = &AppError{Kind: KindUpstream, Message: "Upstream service failed"}
)

func NotFound(format string, args ...interface{}) *AppError {
	return NewAppError(KindNotFound, format, args...)
}

func Validation(format string, args ...interface{}) *AppError {
	return NewAppError(KindValidation, format, args...)
}

func Forbidden(format string, args ...interface{}) *AppError {
	return NewAppError(KindForbidden, format, args...)
}

// Upstream wraps a failed call to an external service.
func Upstream(err error, format string, args ...interface{}) *AppError {
	e := NewAppError(KindUpstream, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of the first AppError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
