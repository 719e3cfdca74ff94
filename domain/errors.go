package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUpstream     ErrorCode = "UPSTREAM"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrCourseNotFound      = NewError(ErrCodeNotFound, "course not found")
	ErrNoActiveCourseRun   = NewError(ErrCodeNotFound, "course has no active course run")
	ErrMissingCourseKey    = NewError(ErrCodeInvalid, "course key is required")
	ErrMissingEnterpriseID = NewError(ErrCodeInvalid, "enterprise uuid is required")
	ErrUnauthorized        = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")
	ErrMissingBearerToken  = NewError(ErrCodeUnauthorized, "missing bearer token")
)

// AggregationError reports that one of the primary course-page lookups
// failed, which voids the whole aggregate.
type AggregationError struct {
	Source string
	Err    error
}

func (e *AggregationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("aggregate course data: %s: %v", e.Source, e.Err)
}

func (e *AggregationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// IsAggregationError reports whether err carries an AggregationError.
func IsAggregationError(err error) bool {
	var aErr *AggregationError
	return errors.As(err, &aErr)
}
