package seleniumgrid

import (
	"context"
	"fmt"
	"time"
)

// stopTimeout bounds the wait for the children during WithSupervisor cleanup.
const stopTimeout = 30 * time.Second

// WithSupervisor manages a grid's lifecycle with automatic cleanup.
//
// It creates a supervisor, starts the grid in mode, runs fn and closes the
// supervisor when fn returns. If fn returns an error, it is returned to the
// caller. A failure to stop is logged and does not override fn's error.
//
// Example usage:
//
//	err := seleniumgrid.WithSupervisor(ctx, seleniumgrid.ModeStandalone,
//	    seleniumgrid.DefaultLaunchConfig(),
//	    func(grid seleniumgrid.Supervisor) error {
//	        return runBrowserTests(ctx)
//	    },
//	    seleniumgrid.WithLogger(log),
//	)
func WithSupervisor(
	ctx context.Context,
	mode Mode,
	launch LaunchConfig,
	fn func(Supervisor) error,
	opts ...Option,
) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	grid := newSupervisorImpl(options)

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
		defer cancel()

		if err := grid.Close(closeCtx); err != nil {
			options.Logger.Warn("failed to stop grid", "error", err)
		}
	}()

	if err := grid.Start(ctx, mode, launch); err != nil {
		return fmt.Errorf("failed to start grid: %w", err)
	}

	return fn(grid)
}
