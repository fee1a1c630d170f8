package backend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResourceExhausted is returned when no free loopback port can be found.
	ErrResourceExhausted = errors.New("no free port available")

	// ErrStartupTimeout matches any StartupTimeoutError.
	ErrStartupTimeout = errors.New("backend startup timed out")

	// ErrNotReady is returned when an operation needs a backend port before one
	// has been recorded.
	ErrNotReady = errors.New("backend not ready")

	// ErrAlreadyLaunched is returned when a launch is recorded while another
	// backend is still registered.
	ErrAlreadyLaunched = errors.New("backend already launched")

	// ErrShuttingDown is returned when a launch finishes after shutdown began.
	ErrShuttingDown = errors.New("backend shutdown in progress")
)

// LaunchError represents a failure to spawn the backend process.
type LaunchError struct {
	// Mode is the launch mode that was attempted.
	Mode string

	// Command is the program that failed to start.
	Command string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch backend (%s mode, %s): %v", e.Mode, e.Command, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *LaunchError) Unwrap() error {
	return e.Cause
}

// StartupTimeoutError is returned when the backend never reported healthy.
type StartupTimeoutError struct {
	Port     int
	Attempts int

	// LastErr is the failure seen on the final attempt, if any.
	LastErr error
}

// Error implements the error interface.
func (e *StartupTimeoutError) Error() string {
	msg := fmt.Sprintf("backend on port %d not ready after %d attempts", e.Port, e.Attempts)
	if e.LastErr != nil {
		msg += ": " + e.LastErr.Error()
	}
	return msg
}

// Is reports whether target is ErrStartupTimeout.
func (e *StartupTimeoutError) Is(target error) bool {
	return target == ErrStartupTimeout
}

// Unwrap returns the last attempt's failure.
func (e *StartupTimeoutError) Unwrap() error {
	return e.LastErr
}

// StepError records a failed shutdown step.
type StepError struct {
	Step  string
	Cause error
}

// Error implements the error interface.
func (e StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Cause)
}

// ShutdownPartialError aggregates every shutdown step that failed. Shutdown
// always runs to completion, so this is informational only.
type ShutdownPartialError struct {
	Steps []StepError
}

// Error implements the error interface.
func (e *ShutdownPartialError) Error() string {
	parts := make([]string, len(e.Steps))
	for i, s := range e.Steps {
		parts[i] = s.Error()
	}
	return "shutdown completed with errors: " + strings.Join(parts, "; ")
}

// Unwrap exposes the step causes to errors.Is and errors.As.
func (e *ShutdownPartialError) Unwrap() []error {
	errs := make([]error, len(e.Steps))
	for i, s := range e.Steps {
		errs[i] = s.Cause
	}
	return errs
}
