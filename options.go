package seleniumgrid

import (
	"log/slog"
	"maps"
)

// Option configures a Supervisor using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithCwd sets the working directory for the child processes. Relative jar
// locations are also resolved against it.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithEnv adds environment variables for the child processes.
// Later calls add to earlier ones.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}

		maps.Copy(o.Env, env)
	}
}

// ===== Binaries =====

// WithJavaPath sets the java executable.
// If not set, JAVA_HOME and PATH are searched.
func WithJavaPath(path string) Option {
	return func(o *Options) {
		o.JavaPath = path
	}
}

// WithServerJar sets the Selenium server jar.
// If not set, SELENIUM_SERVER_JAR and the bundled jar locations are searched.
func WithServerJar(path string) Option {
	return func(o *Options) {
		o.ServerJar = path
	}
}

// WithClientPath sets the phantomjs executable used in hub mode.
// If not set, PHANTOMJS_BIN, PATH and node_modules are searched.
func WithClientPath(path string) Option {
	return func(o *Options) {
		o.ClientPath = path
	}
}

// WithSkipVersionCheck disables the phantomjs version probe.
func WithSkipVersionCheck(skip bool) Option {
	return func(o *Options) {
		o.SkipVersionCheck = skip
	}
}

// ===== Grid =====

// WithClientWebDriverPort sets the port the PhantomJS client serves
// WebDriver on. Defaults to DefaultClientWebDriverPort.
func WithClientWebDriverPort(port int) Option {
	return func(o *Options) {
		o.ClientWebDriverPort = port
	}
}

// ===== Callbacks =====

// WithOutput sets a callback that receives every line written by any child.
// Lines arrive one at a time, in order, on a goroutine of their own; a slow
// callback delays delivery but never the children. The callback may stop the
// grid. Lines can still arrive after Stop returns.
func WithOutput(fn func(Line)) Option {
	return func(o *Options) {
		o.OnOutput = fn
	}
}

// WithFatalHandler replaces the default reaction to a child that cannot be
// launched, which is to log the error and exit with status 1. If the handler
// returns, Start returns the LaunchError.
func WithFatalHandler(fn func(error)) Option {
	return func(o *Options) {
		o.OnFatal = fn
	}
}

// ===== Process Lifecycle =====

// WithExitHook enables or disables the signal hook that terminates the
// children when the program is interrupted. It is enabled by default.
func WithExitHook(enabled bool) Option {
	return func(o *Options) {
		o.DisableExitHook = !enabled
	}
}

// WithParentDeathSignal asks the kernel to send SIGTERM to the children if
// the program dies without running its exit hook. Linux only.
func WithParentDeathSignal(enabled bool) Option {
	return func(o *Options) {
		o.ParentDeathSignal = enabled
	}
}

// ===== Testing =====

// WithLauncher replaces process creation.
func WithLauncher(l Launcher) Option {
	return func(o *Options) {
		o.Launcher = l
	}
}

// WithDiscoverer replaces binary discovery.
func WithDiscoverer(d Discoverer) Option {
	return func(o *Options) {
		o.Discoverer = d
	}
}
