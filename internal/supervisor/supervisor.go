package supervisor

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/selenium-grid-go/internal/cli"
	"github.com/wagiedev/selenium-grid-go/internal/config"
	"github.com/wagiedev/selenium-grid-go/internal/detector"
	"github.com/wagiedev/selenium-grid-go/internal/errors"
	"github.com/wagiedev/selenium-grid-go/internal/hook"
	"github.com/wagiedev/selenium-grid-go/internal/subprocess"
)

// run is one start sequence. Every Start call that arrives while it is in
// flight waits on the same run.
type run struct {
	mode   config.Mode
	launch config.LaunchConfig
	bins   *config.Binaries

	done chan struct{}
	err  error

	// stopped is set under Supervisor.mu when Stop interrupts the run.
	stopped bool
	stopCh  chan struct{}

	// handles this run spawned, torn down if the run fails.
	spawned []config.Handle
}

// Supervisor owns the grid's child processes.
type Supervisor struct {
	log        *slog.Logger
	options    *config.Options
	launcher   config.Launcher
	discoverer config.Discoverer
	exitHook   *hook.ExitHook
	output     *outputQueue

	mu         sync.Mutex
	state      State
	current    *run
	server     config.Handle
	client     config.Handle
	terminated map[string]struct{} // handle IDs already sent SIGTERM
	closed     bool
}

// New creates a supervisor. Nothing is spawned until Start.
//
// Unless options.DisableExitHook is set, a signal hook is installed that
// terminates the children when the process receives SIGINT, SIGTERM or SIGHUP.
func New(options *config.Options) *Supervisor {
	if options == nil {
		options = &config.Options{}
	}

	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Supervisor{
		log:        log.With("component", "supervisor"),
		options:    options,
		launcher:   options.Launcher,
		discoverer: options.Discoverer,
		terminated: make(map[string]struct{}, 2),
	}

	if options.OnOutput != nil {
		s.output = newOutputQueue(options.OnOutput)
	}

	if s.launcher == nil {
		s.launcher = subprocess.NewLauncher(log, options.ParentDeathSignal)
	}

	if s.discoverer == nil {
		s.discoverer = cli.NewDiscoverer(&cli.Config{
			JavaPath:         options.JavaPath,
			ServerJar:        options.ServerJar,
			ClientPath:       options.ClientPath,
			Dir:              options.Cwd,
			SkipVersionCheck: options.SkipVersionCheck,
			Logger:           log,
		})
	}

	if !options.DisableExitHook {
		s.exitHook = hook.New(log, func(os.Signal) { s.HandleAbnormalExit() })
		s.exitHook.Install()
	}

	return s
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Handles returns the number of live children.
func (s *Supervisor) Handles() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.liveLocked())
}

// Start launches the grid in the given mode and blocks until it is ready,
// the start fails, or ctx is done.
//
// ctx bounds only the wait. Children are never tied to it: a caller that
// gives up leaves the start running, and a later Start joins it.
//
// While a start is in flight, further calls join it and no second server is
// spawned. Once ready, Start returns nil immediately.
func (s *Supervisor) Start(ctx context.Context, mode config.Mode, launch config.LaunchConfig) error {
	s.mu.Lock()
	r, handled, err := s.existingLocked()
	s.mu.Unlock()

	if handled {
		return s.await(ctx, r, err)
	}

	if err := launch.Validate(); err != nil {
		return err
	}

	bins, err := s.discoverer.Discover(ctx, mode)
	if err != nil {
		return err
	}

	s.mu.Lock()

	r, handled, err = s.existingLocked()
	if handled {
		s.mu.Unlock()

		return s.await(ctx, r, err)
	}

	r = &run{
		mode:   mode,
		launch: launch,
		bins:   bins,
		done:   make(chan struct{}),
		stopCh: make(chan struct{}),
	}
	s.current = r
	s.state = StateStarting
	s.mu.Unlock()

	s.log.Info("Starting grid", "mode", mode, "address", launch.Address())

	go s.execute(r)

	return s.await(ctx, r, nil)
}

// existingLocked decides a Start call without spawning. handled is false
// only when the supervisor is idle and a new run should begin.
// Caller must hold s.mu.
func (s *Supervisor) existingLocked() (r *run, handled bool, err error) {
	if s.closed {
		return nil, true, errors.ErrClosed
	}

	switch s.state {
	case StateReady:
		s.log.Debug("Grid already started")

		return nil, true, nil
	case StateStarting, StateAwaitingClient:
		s.log.Debug("Joining in-flight start")

		return s.current, true, nil
	case StateStopping:
		return nil, true, errors.ErrStopping
	default:
		return nil, false, nil
	}
}

func (s *Supervisor) await(ctx context.Context, r *run, err error) error {
	if r == nil {
		return err
	}

	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// execute runs the start sequence and publishes its outcome.
func (s *Supervisor) execute(r *run) {
	s.finish(r, s.sequence(r))
}

func (s *Supervisor) sequence(r *run) error {
	serverCmd := cli.ServerCommand(r.bins, r.mode, r.launch)
	serverStage := newStage()

	res, err := s.spawn(r, config.RoleServer, serverCmd, serverStage)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case config.OutcomeAddressInUse:
		s.log.Warn("Port already in use, assuming server is running", "address", r.launch.Address())

		if r.mode == config.ModeStandalone {
			return nil
		}
	case config.OutcomeSpawned:
		if err := s.awaitStage(r, serverStage); err != nil {
			return err
		}

		s.log.Info("Server ready", "mode", r.mode)
	default:
		return &errors.LaunchError{Role: string(config.RoleServer), Path: serverCmd.Path, Err: res.Err}
	}

	if r.mode != config.ModeHub {
		return nil
	}

	s.mu.Lock()
	if r.stopped {
		s.mu.Unlock()

		return errors.ErrStopped
	}

	s.state = StateAwaitingClient
	s.mu.Unlock()

	clientCmd := cli.ClientCommand(r.bins, r.launch, s.options.WebDriverPort())
	clientStage := newStage()

	res, err = s.spawn(r, config.RoleClient, clientCmd, clientStage)
	if err != nil {
		return err
	}

	if res.Outcome != config.OutcomeSpawned {
		return &errors.LaunchError{Role: string(config.RoleClient), Path: clientCmd.Path, Err: res.Err}
	}

	if err := s.awaitStage(r, clientStage); err != nil {
		return err
	}

	s.log.Info("Client registered with hub", "hub", r.launch.HubURL())

	return nil
}

// spawn launches one child and attaches it to its role slot. Both happen
// under s.mu so Stop never observes a launched but unowned child.
func (s *Supervisor) spawn(r *run, role config.Role, cmd cli.Command, st *stage) (config.SpawnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.stopped {
		return config.SpawnResult{}, errors.ErrStopped
	}

	res := s.launcher.Spawn(context.Background(), config.ProcessSpec{
		Role:   role,
		Path:   cmd.Path,
		Args:   cmd.Args,
		Dir:    s.options.Cwd,
		Env:    s.environment(),
		OnLine: s.lineHandler(r.mode, role, st),
	})

	if res.Outcome != config.OutcomeSpawned || res.Handle == nil {
		if res.Outcome == config.OutcomeSpawned {
			res.Outcome = config.OutcomeFailed
		}

		return res, nil
	}

	h := res.Handle

	switch role {
	case config.RoleServer:
		s.server = h
	case config.RoleClient:
		s.client = h
	}

	r.spawned = append(r.spawned, h)

	go s.watch(h, st)

	return res, nil
}

// lineHandler forwards output and feeds the detector until the role settles.
func (s *Supervisor) lineHandler(mode config.Mode, role config.Role, st *stage) func(config.Line) {
	return func(line config.Line) {
		if s.output != nil {
			s.output.push(line)
		}

		if st.isSettled() {
			return
		}

		result := detector.Classify(line, role, mode)

		switch result.Kind {
		case detector.Ready:
			st.settle(nil)
		case detector.Fatal:
			s.log.Error("Fatal startup output", "role", role, "line", result.Message)
			st.settle(&errors.StartupOutputError{Role: string(role), Line: result.Message})
		case detector.Ignore:
		}
	}
}

func (s *Supervisor) awaitStage(r *run, st *stage) error {
	select {
	case err := <-st.result:
		return err
	case <-r.stopCh:
		return errors.ErrStopped
	}
}

// watch observes one child's exit.
func (s *Supervisor) watch(h config.Handle, st *stage) {
	<-h.Done()

	st.settle(&errors.ProcessError{
		Role:     string(h.Role()),
		ExitCode: h.ExitCode(),
		Stderr:   h.Stderr(),
		Err:      h.Err(),
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateReady {
		s.log.Warn("Child exited unexpectedly", "role", h.Role(), "exit_code", h.ExitCode())
	} else {
		s.log.Debug("Child exited", "role", h.Role(), "exit_code", h.ExitCode())
	}

	s.detachLocked(h)
}

// detachLocked clears h from its slot and settles Idle when nothing is left
// to wait for. Caller must hold s.mu.
func (s *Supervisor) detachLocked(h config.Handle) {
	if s.server == h {
		s.server = nil
	}

	if s.client == h {
		s.client = nil
	}

	delete(s.terminated, h.ID())

	if len(s.liveLocked()) == 0 && (s.state == StateReady || s.state == StateStopping) {
		s.state = StateIdle
	}
}

func (s *Supervisor) liveLocked() []config.Handle {
	handles := make([]config.Handle, 0, 2)

	if s.server != nil {
		handles = append(handles, s.server)
	}

	if s.client != nil {
		handles = append(handles, s.client)
	}

	return handles
}

// finish publishes the run's outcome. Failures tear down what the run
// spawned before callers are released.
func (s *Supervisor) finish(r *run, err error) {
	s.mu.Lock()

	if r.stopped {
		if s.current == r {
			s.current = nil
		}

		r.err = errors.ErrStopped
		close(r.done)
		s.mu.Unlock()

		s.log.Info("Start abandoned by stop")

		return
	}

	if err == nil {
		s.current = nil
		s.state = StateReady
		close(r.done)
		s.mu.Unlock()

		s.log.Info("Grid ready", "mode", r.mode, "hub", r.launch.HubURL())

		return
	}

	s.mu.Unlock()

	s.log.Error("Grid start failed", "error", err)
	s.teardown(r)

	s.mu.Lock()
	if s.current == r {
		s.current = nil
	}

	if s.state != StateStopping {
		s.state = StateIdle
	}
	s.mu.Unlock()

	if launchErr, ok := stderrors.AsType[*errors.LaunchError](err); ok {
		s.fatal(launchErr)
	}

	r.err = err
	close(r.done)
}

// teardown terminates the children a failed run spawned and waits for them.
func (s *Supervisor) teardown(r *run) {
	s.mu.Lock()
	handles := s.markTerminatedLocked(r.spawned)
	s.mu.Unlock()

	s.terminate(handles)

	for _, h := range r.spawned {
		<-h.Done()

		s.mu.Lock()
		s.detachLocked(h)
		s.mu.Unlock()
	}
}

// markTerminatedLocked returns the handles not yet sent SIGTERM and records
// them as sent. Caller must hold s.mu.
func (s *Supervisor) markTerminatedLocked(handles []config.Handle) []config.Handle {
	pending := make([]config.Handle, 0, len(handles))

	for _, h := range handles {
		if _, ok := s.terminated[h.ID()]; ok {
			continue
		}

		select {
		case <-h.Done():
			continue
		default:
		}

		s.terminated[h.ID()] = struct{}{}
		pending = append(pending, h)
	}

	return pending
}

func (s *Supervisor) terminate(handles []config.Handle) {
	for _, h := range handles {
		s.log.Debug("Terminating child", "role", h.Role(), "pid", h.PID())

		if err := h.Terminate(); err != nil {
			s.log.Warn("Failed to terminate child", "role", h.Role(), "error", err)
		}
	}
}

// fatal reports a launch failure through the configured handler.
func (s *Supervisor) fatal(err error) {
	if s.options.OnFatal != nil {
		s.options.OnFatal(err)

		return
	}

	s.log.Error("Fatal launch failure, exiting", "error", err)
	os.Exit(1)
}

// interruptLocked marks an in-flight run as stopped. Caller must hold s.mu.
func (s *Supervisor) interruptLocked() {
	if s.current != nil && !s.current.stopped {
		s.current.stopped = true
		close(s.current.stopCh)
	}
}

// Stop terminates every live child with SIGTERM and waits for them to exit.
//
// An in-flight start is abandoned and its caller receives ErrStopped. With
// nothing running, Stop only resets the state. Concurrent calls do not signal
// a child twice. ctx bounds only the wait; the children still exit and the
// state still reaches Idle after ctx is done.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()

	s.interruptLocked()

	live := s.liveLocked()
	if len(live) == 0 {
		s.state = StateIdle
		s.mu.Unlock()

		s.log.Debug("Stop requested with no running children")

		return nil
	}

	s.state = StateStopping
	pending := s.markTerminatedLocked(live)
	s.mu.Unlock()

	s.log.Info("Stopping grid", "children", len(live))
	s.terminate(pending)

	g, gctx := errgroup.WithContext(ctx)

	for _, h := range live {
		g.Go(func() error {
			select {
			case <-h.Done():
				s.mu.Lock()
				s.detachLocked(h)
				s.mu.Unlock()

				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Warn("Stop wait interrupted", "error", err)

		return err
	}

	s.log.Info("Grid stopped")

	return nil
}

// HandleAbnormalExit sends SIGTERM to every live child without waiting.
// It is the exit hook's callback and does nothing unless the grid is active.
func (s *Supervisor) HandleAbnormalExit() {
	s.mu.Lock()

	if !s.state.IsActive() {
		s.mu.Unlock()

		return
	}

	s.interruptLocked()

	live := s.liveLocked()
	if len(live) == 0 {
		s.state = StateIdle
		s.mu.Unlock()

		return
	}

	s.state = StateStopping
	pending := s.markTerminatedLocked(live)
	s.mu.Unlock()

	s.log.Warn("Supervising process exiting, terminating children", "children", len(pending))
	s.terminate(pending)
}

// Close stops the grid and removes the exit hook. The supervisor cannot be
// started again afterwards.
func (s *Supervisor) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if s.exitHook != nil {
		s.exitHook.Uninstall()
	}

	return s.Stop(ctx)
}

// environment merges options.Env over the inherited environment.
func (s *Supervisor) environment() []string {
	if len(s.options.Env) == 0 {
		return nil
	}

	env := os.Environ()
	for k, v := range s.options.Env {
		env = append(env, k+"="+v)
	}

	return env
}
