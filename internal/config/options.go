package config

import (
	"log/slog"
)

// DefaultClientWebDriverPort is the port the headless client serves WebDriver on.
const DefaultClientWebDriverPort = 8080

// Options configures the behavior of the supervisor.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// JavaPath is an explicit path to the java executable.
	// If empty, JAVA_HOME and PATH are searched.
	JavaPath string

	// ServerJar is an explicit path to the Selenium server jar.
	// If empty, the module-local and vendored jar locations are searched.
	ServerJar string

	// ClientPath is an explicit path to the phantomjs executable.
	// If empty, PATH and the node_modules location are searched.
	ClientPath string

	// SkipVersionCheck skips the client version probe during discovery.
	SkipVersionCheck bool

	// Cwd sets the working directory for the child processes.
	Cwd string

	// Env provides additional environment variables for the child processes.
	Env map[string]string

	// ClientWebDriverPort is the port passed to the client's --webdriver flag.
	// Zero means DefaultClientWebDriverPort.
	ClientWebDriverPort int

	// OnOutput receives every line written by any child, in arrival order,
	// on a goroutine separate from the pipe readers. It may call Stop.
	OnOutput func(Line)

	// OnFatal is called when a child cannot be launched at all.
	// If nil, the error is logged and the process exits with status 1.
	OnFatal func(error)

	// DisableExitHook disables the signal hook that terminates children when
	// the supervising process is interrupted. Set it when the caller owns
	// signal handling and calls Stop itself.
	DisableExitHook bool

	// ParentDeathSignal asks the kernel to send SIGTERM to children if the
	// supervising process dies (Linux only).
	ParentDeathSignal bool

	// Launcher overrides process creation. Nil uses subprocess.Launcher.
	Launcher Launcher

	// Discoverer overrides binary discovery. Nil uses cli.Discoverer.
	Discoverer Discoverer
}

// WebDriverPort returns the effective client WebDriver port.
func (o *Options) WebDriverPort() int {
	if o == nil || o.ClientWebDriverPort == 0 {
		return DefaultClientWebDriverPort
	}

	return o.ClientWebDriverPort
}
