package seleniumgrid

import "context"

// Supervisor runs a Selenium grid as child processes.
//
// A Supervisor owns at most one server and one client. It can be started and
// stopped repeatedly until Close.
//
// Example usage:
//
//	grid := NewSupervisor(WithLogger(slog.Default()))
//	defer grid.Close(ctx)
//
//	if err := grid.StartHub(ctx, DefaultLaunchConfig()); err != nil {
//	    log.Fatal(err)
//	}
type Supervisor interface {
	// Start launches the grid in mode and blocks until it accepts sessions.
	// ctx bounds only the wait; the children are not tied to it.
	// Calls made while a start is in flight share its result.
	// Returns nil at once if the grid is already ready.
	Start(ctx context.Context, mode Mode, launch LaunchConfig) error

	// StartStandalone is Start with ModeStandalone.
	StartStandalone(ctx context.Context, launch LaunchConfig) error

	// StartHub is Start with ModeHub.
	StartHub(ctx context.Context, launch LaunchConfig) error

	// Stop sends SIGTERM to every child and waits for them to exit.
	// A pending Start returns ErrStopped. Stop on an idle grid returns nil.
	Stop(ctx context.Context) error

	// State returns the lifecycle state.
	State() State

	// Handles returns the number of running children.
	Handles() int

	// HandleAbnormalExit sends SIGTERM to every child without waiting.
	// The exit hook calls it; programs with their own signal handling may too.
	HandleAbnormalExit()

	// Close stops the grid and removes the exit hook.
	// The supervisor cannot be started afterwards.
	Close(ctx context.Context) error
}

// NewSupervisor creates a supervisor. Nothing is spawned until Start.
func NewSupervisor(opts ...Option) Supervisor {
	return newSupervisorImpl(applyOptions(opts))
}
