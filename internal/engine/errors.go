package engine

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode categorizes engine errors.
type RuntimeErrorCode string

const (
	// ErrCodeStopped indicates the engine no longer accepts events.
	ErrCodeStopped RuntimeErrorCode = "ENGINE_STOPPED"

	// ErrCodeCallPanicked indicates a function passed to Do panicked.
	ErrCodeCallPanicked RuntimeErrorCode = "CALL_PANICKED"
)

// RuntimeError represents an error detected by the engine.
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsStopped returns true if err reports a stopped engine.
// Uses errors.As to handle wrapped errors.
func IsStopped(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeStopped
	}
	return false
}

// IsCallPanic returns true if err reports a panic inside Do.
func IsCallPanic(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCallPanicked
	}
	return false
}

func newStoppedError() *RuntimeError {
	return &RuntimeError{Code: ErrCodeStopped, Message: "engine is not accepting events"}
}

func newPanicError(v any) *RuntimeError {
	return &RuntimeError{Code: ErrCodeCallPanicked, Message: fmt.Sprintf("call panicked: %v", v)}
}
