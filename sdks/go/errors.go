package guardstack

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrBlocked is returned when a guardrail or intercept decision blocks
	// the content/call.
	ErrBlocked = errors.New("blocked")

	// ErrServerUnreachable is returned when the GuardStack server cannot be
	// contacted.
	ErrServerUnreachable = errors.New("server unreachable")
)

// GuardStackError is the base error type for SDK errors not covered by a
// more specific type below.
type GuardStackError struct {
	// Code is a machine-readable error code (e.g. "HTTP_500").
	Code string
	// Err is the underlying error.
	Err error
}

func (e *GuardStackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("guardstack [%s]: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("guardstack [%s]", e.Code)
}

func (e *GuardStackError) Unwrap() error { return e.Err }

// BlockedError is returned when a guardrail checkpoint or the interceptor
// returns a block verdict.
type BlockedError struct {
	// CheckpointName is the guardrail checkpoint that blocked, or the empty
	// string for an interceptor block.
	CheckpointName string
	// Reason explains why the content or call was blocked.
	Reason string
	// RequestID is the unique identifier for this decision.
	RequestID string
}

func (e *BlockedError) Error() string {
	if e.CheckpointName != "" {
		return fmt.Sprintf("blocked by checkpoint %q: %s", e.CheckpointName, e.Reason)
	}
	return fmt.Sprintf("blocked: %s", e.Reason)
}

// Is reports whether this error matches the target error, supporting
// errors.Is(err, ErrBlocked).
func (e *BlockedError) Is(target error) bool {
	return target == ErrBlocked
}

// ServerUnreachableError is returned when the GuardStack server cannot be
// contacted and the client's fail mode is "closed".
type ServerUnreachableError struct {
	// Cause is the underlying network error.
	Cause error
}

func (e *ServerUnreachableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("server unreachable: %v", e.Cause)
	}
	return "server unreachable"
}

func (e *ServerUnreachableError) Unwrap() error { return e.Cause }

// Is reports whether this error matches the target error, supporting
// errors.Is(err, ErrServerUnreachable).
func (e *ServerUnreachableError) Is(target error) bool {
	return target == ErrServerUnreachable
}
