package seleniumgrid

import "github.com/wagiedev/selenium-grid-go/internal/errors"

// Re-export error types from internal package

// GridError is the base interface for all supervisor errors.
type GridError = errors.GridError

// BinaryNotFoundError indicates java, the server jar or phantomjs was not found.
type BinaryNotFoundError = errors.BinaryNotFoundError

// LaunchError indicates a child process could not be spawned.
type LaunchError = errors.LaunchError

// StartupOutputError indicates a child printed output that fails the start.
type StartupOutputError = errors.StartupOutputError

// ProcessError indicates a child exited before it became ready.
type ProcessError = errors.ProcessError

// Re-export sentinel errors from internal package.
var (
	// ErrInvalidConfig indicates a LaunchConfig failed validation.
	ErrInvalidConfig = errors.ErrInvalidConfig

	// ErrStopped indicates a pending start was abandoned because Stop was called.
	ErrStopped = errors.ErrStopped

	// ErrStopping indicates Start was called while a stop was in progress.
	ErrStopping = errors.ErrStopping

	// ErrClosed indicates the supervisor has been closed.
	ErrClosed = errors.ErrClosed
)
