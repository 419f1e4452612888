package seleniumgrid

import (
	"github.com/wagiedev/selenium-grid-go/internal/config"
	"github.com/wagiedev/selenium-grid-go/internal/supervisor"
)

// Mode selects the grid layout.
type Mode = config.Mode

const (
	// ModeStandalone runs a single Selenium server.
	ModeStandalone = config.ModeStandalone
	// ModeHub runs the server as a hub with a PhantomJS client registered.
	ModeHub = config.ModeHub
)

// ParseMode parses a mode name such as "standalone" or "hub".
func ParseMode(s string) (Mode, error) {
	return config.ParseMode(s)
}

// Role identifies a child process.
type Role = config.Role

const (
	// RoleServer is the Selenium server.
	RoleServer = config.RoleServer
	// RoleClient is the PhantomJS client.
	RoleClient = config.RoleClient
)

// Stream identifies a child's output stream.
type Stream = config.Stream

const (
	// StreamStdout is standard output.
	StreamStdout = config.StreamStdout
	// StreamStderr is standard error.
	StreamStderr = config.StreamStderr
)

// Line is one line of child output.
type Line = config.Line

// LaunchConfig holds the server's command line values.
type LaunchConfig = config.LaunchConfig

// DefaultLaunchConfig returns the conventional local grid settings:
// 127.0.0.1:4444, a 30 second session timeout and 5 sessions.
func DefaultLaunchConfig() LaunchConfig {
	return LaunchConfig{
		Host:        "127.0.0.1",
		Port:        4444,
		Timeout:     30,
		MaxSessions: 5,
	}
}

// State is the supervisor lifecycle state.
type State = supervisor.State

// State values, in lifecycle order.
const (
	StateIdle           = supervisor.StateIdle
	StateStarting       = supervisor.StateStarting
	StateAwaitingClient = supervisor.StateAwaitingClient
	StateReady          = supervisor.StateReady
	StateStopping       = supervisor.StateStopping
)

// Options configures a supervisor. Build it with Option functions.
type Options = config.Options

// DefaultClientWebDriverPort is the WebDriver port of the PhantomJS client.
const DefaultClientWebDriverPort = config.DefaultClientWebDriverPort
