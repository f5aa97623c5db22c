package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures for the transport layer
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindInvalidArgument  ErrorKind = "invalid_argument"
	KindConflict         ErrorKind = "conflict"
	KindForbidden        ErrorKind = "forbidden"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindValidationFailed ErrorKind = "validation_failed"
	KindRateLimited      ErrorKind = "rate_limited"
	KindInternal         ErrorKind = "internal"
)

// ServiceError is the error type returned by every service operation
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches another ServiceError by kind, so errors.Is(err, ErrNotFound)
// works for any not-found failure.
func (e *ServiceError) Is(target error) bool {
	var t *ServiceError
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	ErrNotFound         = &ServiceError{Kind: KindNotFound}
	ErrInvalidArgument  = &ServiceError{Kind: KindInvalidArgument}
	ErrConflict         = &ServiceError{Kind: KindConflict}
	ErrForbidden        = &ServiceError{Kind: KindForbidden}
	ErrUnauthorized     = &ServiceError{Kind: KindUnauthorized}
	ErrValidationFailed = &ServiceError{Kind: KindValidationFailed}
	ErrRateLimited      = &ServiceError{Kind: KindRateLimited}
	ErrInternal         = &ServiceError{Kind: KindInternal}
)

func notFound(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func unauthorized(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func validationFailed(message string, details []string) *ServiceError {
	return &ServiceError{Kind: KindValidationFailed, Message: message, Details: details}
}

// internal wraps an unexpected store or runtime failure. Service errors
// already carrying a kind pass through unchanged.
func internal(message string, err error) error {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}
	return &ServiceError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors
func KindOf(err error) ErrorKind {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
