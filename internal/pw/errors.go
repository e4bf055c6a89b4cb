package pw

import (
	"errors"
	"fmt"
)

// Code classifies service errors.
type Code string

const (
	CodeNotFound   Code = "NOT_FOUND"
	CodeValidation Code = "VALIDATION"
	CodeConflict   Code = "CONFLICT"
)

// Error is a classified service error. Two Errors match under errors.Is
// when their codes match, so callers test with the sentinels below.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrNotFound   = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrConflict   = &Error{Code: CodeConflict, Message: "conflicting write"}
)

// NotFoundError reports a missing project, artifact or revision.
func NotFoundError(format string, args ...any) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports input that failed a shape or schema check.
func ValidationError(cause error, format string, args ...any) error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// ConflictError reports a write that lost a race with another writer.
// The caller may retry the whole operation.
func ConflictError(cause error, format string, args ...any) error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
