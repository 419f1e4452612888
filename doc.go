// Package seleniumgrid starts and stops a local Selenium grid as child
// processes of a Go program.
//
// Two layouts are supported. In standalone mode a single Selenium server is
// launched with java. In hub mode the server runs as a grid hub and a
// headless PhantomJS client is launched and registered with it.
//
// # Basic Usage
//
//	grid := seleniumgrid.NewSupervisor(
//	    seleniumgrid.WithLogger(slog.Default()),
//	)
//	defer grid.Close(ctx)
//
//	if err := grid.StartStandalone(ctx, seleniumgrid.DefaultLaunchConfig()); err != nil {
//	    log.Fatal(err)
//	}
//
//	// point a WebDriver client at http://127.0.0.1:4444/wd/hub
//
// Start blocks until the server reports that it accepts sessions. Concurrent
// Start calls share one launch. If the port is already taken, the running
// server is reused.
//
// # Lifecycle Helper
//
// WithSupervisor starts a grid, runs a callback and stops the grid again:
//
//	err := seleniumgrid.WithSupervisor(ctx, seleniumgrid.ModeHub,
//	    seleniumgrid.DefaultLaunchConfig(),
//	    func(grid seleniumgrid.Supervisor) error {
//	        return runBrowserTests(ctx)
//	    },
//	    seleniumgrid.WithClientWebDriverPort(8910),
//	)
//
// # Process Exit
//
// Unless disabled with WithExitHook(false), the supervisor terminates its
// children when the program receives SIGINT, SIGTERM or SIGHUP, then lets the
// signal end the program as usual.
//
// # Error Handling
//
// Start returns typed errors that can be inspected with errors.As:
//
//	var outErr *seleniumgrid.StartupOutputError
//	if errors.As(err, &outErr) {
//	    log.Printf("%s printed: %s", outErr.Role, outErr.Line)
//	}
//
// A child that cannot be launched at all is reported to the fatal handler,
// which by default logs the error and exits the program with status 1.
//
// # MCP
//
// ServeMCP exposes grid_start, grid_stop and grid_status tools over stdio so
// an MCP client can manage the grid.
package seleniumgrid
