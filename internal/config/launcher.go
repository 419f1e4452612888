package config

import (
	"context"
	"fmt"
)

// SpawnOutcome tags the result of a spawn attempt.
type SpawnOutcome int

const (
	// OutcomeSpawned means the child is running and Handle is set.
	OutcomeSpawned SpawnOutcome = iota
	// OutcomeAddressInUse means the OS reported the address as already in use.
	// No child is running.
	OutcomeAddressInUse
	// OutcomeFailed means the child could not be launched. Err is set.
	OutcomeFailed
)

// String returns a human-readable outcome name.
func (o SpawnOutcome) String() string {
	switch o {
	case OutcomeSpawned:
		return "spawned"
	case OutcomeAddressInUse:
		return "address_in_use"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// SpawnResult is returned by Launcher.Spawn.
type SpawnResult struct {
	Outcome SpawnOutcome
	Handle  Handle
	Err     error
}

// ProcessSpec describes one child process to launch.
type ProcessSpec struct {
	// Role is the role of the child.
	Role Role

	// Path is the executable.
	Path string

	// Args are the ordered command line arguments.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is the full environment. Nil inherits the supervisor's environment.
	Env []string

	// OnLine receives every line the child writes to stdout or stderr.
	// It is called from the stream reader goroutines and must be safe for
	// concurrent use; lines of one stream arrive in order.
	OnLine func(Line)
}

// Handle is one spawned child process.
//
// The supervisor owns a Handle from spawn until its exit has been observed.
type Handle interface {
	// ID is a unique identifier for this child.
	ID() string

	// Role returns the role the child was spawned for.
	Role() Role

	// PID returns the OS process ID.
	PID() int

	// Done is closed once both output streams are drained and the process
	// has been waited on.
	Done() <-chan struct{}

	// ExitCode returns the exit code, or -1 before exit.
	ExitCode() int

	// Err returns the error from waiting on the process, if any.
	Err() error

	// Stderr returns the buffered tail of the child's standard error.
	Stderr() string

	// Terminate sends a graceful termination signal. It does not wait.
	Terminate() error
}

// Launcher spawns child processes.
// Implement this to substitute process creation in tests.
//
// The default implementation is subprocess.Launcher.
type Launcher interface {
	Spawn(ctx context.Context, spec ProcessSpec) SpawnResult
}

// Binaries holds the resolved paths needed to launch a grid.
type Binaries struct {
	// Java is the Java executable used to run the server.
	Java string

	// ServerJar is the Selenium server standalone jar.
	ServerJar string

	// Client is the PhantomJS executable. Empty in standalone mode.
	Client string
}

// Discoverer resolves the binaries needed for a mode.
type Discoverer interface {
	Discover(ctx context.Context, mode Mode) (*Binaries, error)
}
