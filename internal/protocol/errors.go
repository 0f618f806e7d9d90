package protocol

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes protocol errors.
type ErrorCode string

const (
	// ErrCodeViolation indicates a message that does not fit the shape its
	// discriminant requires.
	ErrCodeViolation ErrorCode = "PROTOCOL_VIOLATION"

	// ErrCodeMalformed indicates bytes that are not a JSON object at all.
	ErrCodeMalformed ErrorCode = "MALFORMED_FRAME"
)

// ViolationError reports a message that could not be accepted under its
// discriminant. It never aborts a batch; callers skip the message and go on.
type ViolationError struct {
	Code    ErrorCode
	Kind    Kind
	Index   int    // position in the batch, -1 when not decoded from a batch
	Field   string // offending field, when known
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ViolationError) Error() string {
	loc := ""
	if e.Index >= 0 {
		loc = fmt.Sprintf(" (index=%d)", e.Index)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: field %q: %s%s", e.Code, e.Kind, e.Field, e.Message, loc)
	}
	if e.Kind != "" {
		return fmt.Sprintf("%s: %s: %s%s", e.Code, e.Kind, e.Message, loc)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, loc)
}

func (e *ViolationError) Unwrap() error {
	return e.Err
}

// IsViolation returns true if err is, or wraps, a ViolationError.
func IsViolation(err error) bool {
	var ve *ViolationError
	return errors.As(err, &ve)
}

func newViolation(kind Kind, field, message string, err error) *ViolationError {
	return &ViolationError{
		Code:    ErrCodeViolation,
		Kind:    kind,
		Index:   -1,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
