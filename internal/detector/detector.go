package detector

import (
	"strings"

	"github.com/wagiedev/selenium-grid-go/internal/config"
)

// Markers the wrapped tools print on startup.
const (
	// MarkerSocketConnector is written to stderr by a hub once it listens.
	MarkerSocketConnector = "Started SocketConnector"

	// MarkerServletHandler is written to stdout by a standalone server once it serves.
	MarkerServletHandler = "Started org.openqa.jetty.jetty.servlet.ServletHandler"

	// MarkerRegistered is written to stdout by PhantomJS once the hub accepted it.
	MarkerRegistered = "Registered with grid"

	// MarkerAddressInUse is written to stderr when the server cannot bind.
	MarkerAddressInUse = "Address already in use"
)

// BenignServerOutput lists substrings a standalone server is expected to
// write to stderr while starting. Any other stderr line is fatal until the
// server is ready.
var BenignServerOutput = []string{
	"org.openqa.grid.selenium.GridLauncher main",
	"Setting system property",
	"INFO",
	"WARNING",
}

var readinessMarkers = []string{
	MarkerSocketConnector,
	MarkerServletHandler,
	MarkerRegistered,
}

// Kind is the classification of a line.
type Kind int

const (
	// Ignore means the line carries no lifecycle signal.
	Ignore Kind = iota
	// Ready means the process finished initializing.
	Ready
	// Fatal means the start has failed.
	Fatal
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Ignore:
		return "ignore"
	case Ready:
		return "ready"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Result is the outcome of classifying one line.
type Result struct {
	Kind Kind

	// Message describes a Fatal result. Empty otherwise.
	Message string
}

// Classify classifies one line of output from a process in the given role
// and mode.
func Classify(line config.Line, role config.Role, mode config.Mode) Result {
	text := strings.TrimSpace(line.Text)
	if text == "" {
		return Result{Kind: Ignore}
	}

	switch role {
	case config.RoleServer:
		return classifyServer(text, line.Stream, mode)
	case config.RoleClient:
		return classifyClient(text, line.Stream)
	default:
		return Result{Kind: Ignore}
	}
}

func classifyServer(text string, stream config.Stream, mode config.Mode) Result {
	if stream == config.StreamStdout {
		if mode == config.ModeStandalone && strings.Contains(text, MarkerServletHandler) {
			return Result{Kind: Ready}
		}

		return Result{Kind: Ignore}
	}

	if stream != config.StreamStderr {
		return Result{Kind: Ignore}
	}

	// The hub logs its startup banner to stderr.
	if mode == config.ModeHub && strings.Contains(text, MarkerSocketConnector) {
		return Result{Kind: Ready}
	}

	if strings.Contains(text, MarkerAddressInUse) {
		return Result{Kind: Fatal, Message: text + " (maybe try killall -9 java)"}
	}

	if mode != config.ModeStandalone {
		return Result{Kind: Ignore}
	}

	if containsAny(text, readinessMarkers) || containsAny(text, BenignServerOutput) {
		return Result{Kind: Ignore}
	}

	return Result{Kind: Fatal, Message: text}
}

func classifyClient(text string, stream config.Stream) Result {
	if stream == config.StreamStdout && strings.Contains(text, MarkerRegistered) {
		return Result{Kind: Ready}
	}

	return Result{Kind: Ignore}
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}

	return false
}
