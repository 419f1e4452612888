package seleniumgrid

import (
	"context"

	"github.com/wagiedev/selenium-grid-go/internal/supervisor"
)

// supervisorWrapper wraps the internal supervisor to adapt it to the public interface.
type supervisorWrapper struct {
	impl *supervisor.Supervisor
}

// Compile-time check that *supervisorWrapper implements the Supervisor interface.
var _ Supervisor = (*supervisorWrapper)(nil)

// newSupervisorImpl creates the internal supervisor implementation.
func newSupervisorImpl(options *Options) Supervisor {
	if options.Logger == nil {
		options.Logger = NopLogger()
	}

	return &supervisorWrapper{impl: supervisor.New(options)}
}

func (s *supervisorWrapper) Start(ctx context.Context, mode Mode, launch LaunchConfig) error {
	return s.impl.Start(ctx, mode, launch)
}

func (s *supervisorWrapper) StartStandalone(ctx context.Context, launch LaunchConfig) error {
	return s.impl.Start(ctx, ModeStandalone, launch)
}

func (s *supervisorWrapper) StartHub(ctx context.Context, launch LaunchConfig) error {
	return s.impl.Start(ctx, ModeHub, launch)
}

func (s *supervisorWrapper) Stop(ctx context.Context) error {
	return s.impl.Stop(ctx)
}

func (s *supervisorWrapper) State() State {
	return s.impl.State()
}

func (s *supervisorWrapper) Handles() int {
	return s.impl.Handles()
}

func (s *supervisorWrapper) HandleAbnormalExit() {
	s.impl.HandleAbnormalExit()
}

func (s *supervisorWrapper) Close(ctx context.Context) error {
	return s.impl.Close(ctx)
}
