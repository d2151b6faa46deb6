// Package errors provides the error types used across the llamactl bridge.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrMissingInput  = errors.New("missing input")
	ErrSessionClosed = errors.New("session is closed")
	ErrEmptyCommand  = errors.New("empty command")
)

// SpawnError means the runner executable could not be started at all
// (not found, not executable, bad interpreter path).
type SpawnError struct {
	Path  string
	Cause error
}

func (e *SpawnError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to start %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("failed to start runner: %v", e.Cause)
}

func (e *SpawnError) Unwrap() error {
	return e.Cause
}

// NewSpawnError creates a new SpawnError
func NewSpawnError(path string, cause error) *SpawnError {
	return &SpawnError{Path: path, Cause: cause}
}

// ExitError means the runner started but exited non-zero. Output carries
// whatever the process wrote that best explains the failure (stderr when
// present, stdout otherwise).
type ExitError struct {
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("runner exited with status %d: %s", e.Code, e.Output)
	}
	return fmt.Sprintf("runner exited with status %d", e.Code)
}

// NewExitError creates a new ExitError
func NewExitError(code int, output string) *ExitError {
	return &ExitError{Code: code, Output: output}
}

// GatewayError is the single failure shape surfaced by the command gateway.
// Spawn failures, non-zero exits, and timeouts all collapse into it; callers
// only get a message fit for display. The underlying error stays reachable
// through Unwrap for callers that want to classify.
type GatewayError struct {
	Message string
	Cause   error
}

func (e *GatewayError) Error() string {
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// NewGatewayError wraps cause into the gateway's normalized error shape.
func NewGatewayError(cause error) *GatewayError {
	if cause == nil {
		return &GatewayError{Message: "unknown gateway failure"}
	}
	return &GatewayError{Message: cause.Error(), Cause: cause}
}

// MissingInputError is a user-facing precondition failure detected before
// any process is spawned (no prompt text, no model name).
type MissingInputError struct {
	What string
}

func (e *MissingInputError) Error() string {
	if e.What == "" {
		return "missing input"
	}
	return fmt.Sprintf("missing input: %s", e.What)
}

// Is allows comparison with the ErrMissingInput sentinel
func (e *MissingInputError) Is(target error) bool {
	if target == ErrMissingInput {
		return true
	}
	_, ok := target.(*MissingInputError)
	return ok
}

// NewMissingInputError creates a new MissingInputError
func NewMissingInputError(what string) *MissingInputError {
	return &MissingInputError{What: what}
}

// IsMissingInput reports whether err is a precondition failure that never
// reached the gateway.
func IsMissingInput(err error) bool {
	return errors.Is(err, ErrMissingInput)
}

// IsSpawnError reports whether err originates from a failed process spawn.
func IsSpawnError(err error) bool {
	var se *SpawnError
	return errors.As(err, &se)
}

// IsExitError reports whether err originates from a non-zero runner exit.
func IsExitError(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee)
}

// ExitCode returns the runner exit status carried by err, or -1.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return -1
}

// IsTimeout reports whether err was caused by the per-call deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
