package supervisor

import "fmt"

// State is the lifecycle state of a Supervisor.
type State int

const (
	// StateIdle means no start is in flight and no child is owned.
	StateIdle State = iota
	// StateStarting means the server is being launched.
	StateStarting
	// StateAwaitingClient means the hub is ready and the client is launching.
	StateAwaitingClient
	// StateReady means the grid is usable.
	StateReady
	// StateStopping means termination was requested and exits are pending.
	StateStopping
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateAwaitingClient:
		return "awaiting_client"
	case StateReady:
		return "ready"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// IsActive reports whether a start is in flight or the grid is up.
func (s State) IsActive() bool {
	return s == StateStarting || s == StateAwaitingClient || s == StateReady
}
