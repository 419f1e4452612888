package errors

import (
	"errors"
	"fmt"
)

// GridError is the base interface for all supervisor errors.
type GridError interface {
	error
	IsGridError() bool
}

// Compile-time verification that all error types implement GridError.
var (
	_ GridError = (*BinaryNotFoundError)(nil)
	_ GridError = (*LaunchError)(nil)
	_ GridError = (*StartupOutputError)(nil)
	_ GridError = (*ProcessError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrInvalidConfig indicates a launch configuration failed validation.
	ErrInvalidConfig = errors.New("invalid launch config")

	// ErrStopped indicates a pending start was abandoned because Stop was called.
	ErrStopped = errors.New("supervisor stopped during startup")

	// ErrStopping indicates a start was requested while a stop is in progress.
	ErrStopping = errors.New("supervisor is stopping")

	// ErrClosed indicates the supervisor has been closed and cannot be reused.
	ErrClosed = errors.New("supervisor closed: create a new one with NewSupervisor()")
)

// BinaryNotFoundError indicates a required executable or jar was not found.
type BinaryNotFoundError struct {
	Name          string
	SearchedPaths []string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("%s not found in: %v", e.Name, e.SearchedPaths)
}

// IsGridError implements GridError.
func (e *BinaryNotFoundError) IsGridError() bool { return true }

// LaunchError indicates a child process could not be spawned.
//
// An address-in-use condition during spawn is not reported as a LaunchError;
// the supervisor treats it as an already running server.
type LaunchError struct {
	Role string
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s (%s): %v", e.Role, e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IsGridError implements GridError.
func (e *LaunchError) IsGridError() bool { return true }

// StartupOutputError indicates a child wrote output during startup that marks
// the start as failed.
type StartupOutputError struct {
	Role string
	Line string
}

func (e *StartupOutputError) Error() string {
	return fmt.Sprintf("FATAL ERROR starting %s: %s", e.Role, e.Line)
}

// IsGridError implements GridError.
func (e *StartupOutputError) IsGridError() bool { return true }

// ProcessError indicates a child process exited before it became ready.
type ProcessError struct {
	Role     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s process exited before ready (exit %d): %v", e.Role, e.ExitCode, e.Err)
	}

	return fmt.Sprintf("%s process exited before ready (exit %d): %s", e.Role, e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsGridError implements GridError.
func (e *ProcessError) IsGridError() bool { return true }
