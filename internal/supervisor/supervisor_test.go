package supervisor

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/selenium-grid-go/internal/config"
	"github.com/wagiedev/selenium-grid-go/internal/errors"
)

const (
	serverReadyStandalone = "INFO - Started org.openqa.jetty.jetty.servlet.ServletHandler"
	serverReadyHub        = "INFO - Started SocketConnector@0.0.0.0:4444"
	clientRegistered      = "[INFO  - 2014-01-01T00:00:00.000Z] HUB Register - Registered with grid hub"
)

var testLaunch = config.LaunchConfig{Host: "127.0.0.1", Port: 4444, Timeout: 30, MaxSessions: 5}

// fakeHandle is a scripted child process.
type fakeHandle struct {
	id     string
	role   config.Role
	onLine func(config.Line)

	// ignoreTerm keeps the child running after Terminate.
	ignoreTerm bool
	// onTerminate observes Terminate calls.
	onTerminate func(*fakeHandle)

	terminations atomic.Int32
	exitOnce     sync.Once
	done         chan struct{}
	exitCode     atomic.Int32
}

var _ config.Handle = (*fakeHandle)(nil)

func (h *fakeHandle) ID() string            { return h.id }
func (h *fakeHandle) Role() config.Role     { return h.role }
func (h *fakeHandle) PID() int              { return 4242 }
func (h *fakeHandle) Done() <-chan struct{} { return h.done }
func (h *fakeHandle) ExitCode() int         { return int(h.exitCode.Load()) }
func (h *fakeHandle) Stderr() string        { return "stderr tail" }

func (h *fakeHandle) Err() error {
	if h.ExitCode() == 0 {
		return nil
	}

	return stderrors.New("exit status")
}

func (h *fakeHandle) Terminate() error {
	h.terminations.Add(1)

	if h.onTerminate != nil {
		h.onTerminate(h)
	}

	if !h.ignoreTerm {
		h.exit(-1)
	}

	return nil
}

func (h *fakeHandle) stdout(text string) {
	h.onLine(config.Line{Role: h.role, Stream: config.StreamStdout, Text: text})
}

func (h *fakeHandle) stderr(text string) {
	h.onLine(config.Line{Role: h.role, Stream: config.StreamStderr, Text: text})
}

func (h *fakeHandle) exit(code int) {
	h.exitOnce.Do(func() {
		h.exitCode.Store(int32(code))
		close(h.done)
	})
}

// fakeLauncher records spawns and runs a per-role script for each child.
type fakeLauncher struct {
	mu         sync.Mutex
	specs      []config.ProcessSpec
	handles    []*fakeHandle
	outcomes   map[config.Role]config.SpawnOutcome
	scripts    map[config.Role]func(*fakeHandle)
	ignoreTerm bool

	onTerminate func(*fakeHandle)
}

var _ config.Launcher = (*fakeLauncher)(nil)

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{
		outcomes: make(map[config.Role]config.SpawnOutcome),
		scripts:  make(map[config.Role]func(*fakeHandle)),
	}
}

func (l *fakeLauncher) Spawn(_ context.Context, spec config.ProcessSpec) config.SpawnResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.specs = append(l.specs, spec)

	switch l.outcomes[spec.Role] {
	case config.OutcomeAddressInUse:
		return config.SpawnResult{Outcome: config.OutcomeAddressInUse, Err: stderrors.New("address already in use")}
	case config.OutcomeFailed:
		return config.SpawnResult{Outcome: config.OutcomeFailed, Err: stderrors.New("exec: no such file")}
	case config.OutcomeSpawned:
	}

	h := &fakeHandle{
		id:          fmt.Sprintf("%s-%d", spec.Role, len(l.handles)),
		role:        spec.Role,
		onLine:      spec.OnLine,
		ignoreTerm:  l.ignoreTerm,
		onTerminate: l.onTerminate,
		done:        make(chan struct{}),
	}
	h.exitCode.Store(-1)
	l.handles = append(l.handles, h)

	if script := l.scripts[spec.Role]; script != nil {
		go script(h)
	}

	return config.SpawnResult{Outcome: config.OutcomeSpawned, Handle: h}
}

func (l *fakeLauncher) spawnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.specs)
}

func (l *fakeLauncher) spec(i int) config.ProcessSpec {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.specs[i]
}

func (l *fakeLauncher) handle(i int) *fakeHandle {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.handles[i]
}

type fakeDiscoverer struct {
	err error
}

func (d *fakeDiscoverer) Discover(_ context.Context, mode config.Mode) (*config.Binaries, error) {
	if d.err != nil {
		return nil, d.err
	}

	bins := &config.Binaries{Java: "/usr/bin/java", ServerJar: "/opt/selenium.jar"}
	if mode == config.ModeHub {
		bins.Client = "/usr/bin/phantomjs"
	}

	return bins, nil
}

func newTestSupervisor(t *testing.T, l *fakeLauncher, mutate ...func(*config.Options)) *Supervisor {
	t.Helper()

	opts := &config.Options{
		Logger:          slog.Default(),
		Launcher:        l,
		Discoverer:      &fakeDiscoverer{},
		DisableExitHook: true,
		OnFatal:         func(error) {},
	}

	for _, m := range mutate {
		m(opts)
	}

	s := New(opts)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = s.Stop(ctx)
	})

	return s
}

func readyStandalone(h *fakeHandle) {
	h.stdout("12:00:00.000 INFO - Launching a standalone server")
	h.stdout(serverReadyStandalone)
}

func readyHub(h *fakeHandle) {
	h.stderr("org.openqa.grid.selenium.GridLauncher main")
	h.stderr(serverReadyHub)
}

func registerClient(h *fakeHandle) {
	h.stdout("GhostDriver - Main - running on port 8080")
	h.stdout(clientRegistered)
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	return ctx
}

func TestStart_Standalone(t *testing.T) {
	l := newFakeLauncher()
	l.scripts[config.RoleServer] = readyStandalone

	s := newTestSupervisor(t, l)
	ctx := testContext(t)

	require.NoError(t, s.Start(ctx, config.ModeStandalone, testLaunch))
	require.Equal(t, StateReady, s.State())
	require.Equal(t, 1, s.Handles())
	require.Equal(t, 1, l.spawnCount())

	spec := l.spec(0)
	require.Equal(t, config.RoleServer, spec.Role)
	require.Equal(t, "/usr/bin/java", spec.Path)
	require.Equal(t, []string{
		"-jar", "/opt/selenium.jar",
		"-host", "127.0.0.1",
		"-port", "4444",
		"-timeout", "30",
		"-maxSession", "5",
	}, spec.Args)

	require.NoError(t, s.Stop(ctx))
	require.Equal(t, StateIdle, s.State())
	require.Zero(t, s.Handles())
	require.EqualValues(t, 1, l.handle(0).terminations.Load())
}

func TestStart_Hub(t *testing.T) {
	l := newFakeLauncher()
	l.scripts[config.RoleServer] = readyHub
	l.scripts[config.RoleClient] = registerClient

	s := newTestSupervisor(t, l)
	ctx := testContext(t)

	require.NoError(t, s.Start(ctx, config.ModeHub, testLaunch))
	require.Equal(t, StateReady, s.State())
	require.Equal(t, 2, s.Handles())

	require.Contains(t, l.spec(0).Args, "hub")
	require.Equal(t, "/usr/bin/phantomjs", l.spec(1).Path)
	require.Equal(t, []string{
		"--webdriver", "8080",
		"--webdriver-selenium-grid-hub=http://127.0.0.1:4444",
	}, l.spec(1).Args)

	require.NoError(t, s.Stop(ctx))
	require.Equal(t, StateIdle, s.State())
	require.Zero(t, s.Handles())
	require.EqualValues(t, 1, l.handle(0).terminations.Load())
	require.EqualValues(t, 1, l.handle(1).terminations.Load())
}

func TestStart_HubCustomWebDriverPort(t *testing.T) {
	l := newFakeLauncher()
	l.scripts[config.RoleServer] = readyHub
	l.scripts[config.RoleClient] = registerClient

	s := newTestSupervisor(t, l, func(o *config.Options) { o.ClientWebDriverPort = 9515 })

	require.NoError(t, s.Start(testContext(t), config.ModeHub, testLaunch))
	require.Equal(t, "9515", l.spec(1).Args[1])
}

func TestStart_SingleFlight(t *testing.T) {
	release := make(chan struct{})

	l := newFakeLauncher()
	l.scripts[config.RoleServer] = func(h *fakeHandle) {
		<-release
		readyStandalone(h)
	}

	s := newTestSupervisor(t, l)
	ctx := testContext(t)

	const callers = 8

	errs := make(chan error, callers)

	for range callers {
		go func() {
			errs <- s.Start(ctx, config.ModeStandalone, testLaunch)
		}()
	}

	require.Eventually(t, func() bool { return l.spawnCount() == 1 }, time.Second, time.Millisecond)
	require.Equal(t, StateStarting, s.State())

	close(release)

	for range callers {
		require.NoError(t, <-errs)
	}

	require.Equal(t, 1, l.spawnCount())
	require.Equal(t, 1, s.Handles())
}

func TestStart_AlreadyReady(t *testing.T) {
	l := newFakeLauncher()
	l.scripts[config.RoleServer] = readyStandalone

	s := newTestSupervisor(t, l)
	ctx := testContext(t)

	require.NoError(t, s.Start(ctx, config.ModeStandalone, testLaunch))
	require.NoError(t, s.Start(ctx, config.ModeStandalone, testLaunch))
	require.NoError(t, s.Start(ctx, config.ModeHub, testLaunch))
	require.Equal(t, 1, l.spawnCount())
}

func TestStop_Idle(t *testing.T) {
	l := newFakeLauncher()
	s := newTestSupervisor(t, l)

	require.NoError(t, s.Stop(testContext(t)))
	require.Equal(t, StateIdle, s.State())
	require.Zero(t, l.spawnCount())
}

func TestStart_AddressInUse(t *testing.T) {
	t.Run("standalone assumes running server", func(t *testing.T) {
		l := newFakeLauncher()
		l.outcomes[config.RoleServer] = config.OutcomeAddressInUse

		s := newTestSupervisor(t, l)
		ctx := testContext(t)

		require.NoError(t, s.Start(ctx, config.ModeStandalone, testLaunch))
		require.Equal(t, StateReady, s.State())
		require.Zero(t, s.Handles())

		require.NoError(t, s.Stop(ctx))
		require.Equal(t, StateIdle, s.State())
	})

	t.Run("hub still launches client", func(t *testing.T) {
		l := newFakeLauncher()
		l.outcomes[config.RoleServer] = config.OutcomeAddressInUse
		l.scripts[config.RoleClient] = registerClient

		s := newTestSupervisor(t, l)

		require.NoError(t, s.Start(testContext(t), config.ModeHub, testLaunch))
		require.Equal(t, StateReady, s.State())
		require.Equal(t, 1, s.Handles())
		require.Equal(t, config.RoleClient, l.handle(0).Role())
	})
}

func TestStart_FatalOutput(t *testing.T) {
	tests := []struct {
		name     string
		mode     config.Mode
		script   func(*fakeHandle)
		contains string
	}{
		{
			name: "standalone unexpected stderr",
			mode: config.ModeStandalone,
			script: func(h *fakeHandle) {
				h.stderr("Setting system property webdriver.chrome.driver")
				h.stderr("Exception in thread \"main\" java.lang.UnsupportedClassVersionError")
			},
			contains: "UnsupportedClassVersionError",
		},
		{
			name: "hub address in use",
			mode: config.ModeHub,
			script: func(h *fakeHandle) {
				h.stderr("java.net.BindException: Address already in use")
			},
			contains: "killall -9 java",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newFakeLauncher()
			l.scripts[config.RoleServer] = tt.script

			s := newTestSupervisor(t, l)

			err := s.Start(testContext(t), tt.mode, testLaunch)

			outErr, ok := stderrors.AsType[*errors.StartupOutputError](err)
			require.True(t, ok, "expected StartupOutputError, got %v", err)
			require.Equal(t, "server", outErr.Role)
			require.Contains(t, outErr.Line, tt.contains)
			require.Contains(t, err.Error(), "FATAL ERROR starting server")

			require.Equal(t, StateIdle, s.State())
			require.Zero(t, s.Handles())
			require.EqualValues(t, 1, l.handle(0).terminations.Load())
		})
	}
}

func TestStart_OutputAfterReadyIgnored(t *testing.T) {
	l := newFakeLauncher()
	after := make(chan struct{})

	l.scripts[config.RoleServer] = func(h *fakeHandle) {
		readyStandalone(h)
		h.stderr("java.lang.RuntimeException: session crashed")
		close(after)
	}

	var lines atomic.Int32

	s := newTestSupervisor(t, l, func(o *config.Options) {
		o.OnOutput = func(config.Line) { lines.Add(1) }
	})

	require.NoError(t, s.Start(testContext(t), config.ModeStandalone, testLaunch))
	<-after

	require.Equal(t, StateReady, s.State())
	require.Eventually(t, func() bool { return lines.Load() == 3 }, time.Second, 5*time.Millisecond)
}

func TestStart_ClientReadinessOnlyOnStdout(t *testing.T) {
	l := newFakeLauncher()
	l.scripts[config.RoleServer] = readyHub
	l.scripts[config.RoleClient] = func(h *fakeHandle) {
		h.stderr(clientRegistered)
	}

	s := newTestSupervisor(t, l)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := s.Start(ctx, config.ModeHub, testLaunch)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, StateAwaitingClient, s.State())
}

func TestStart_LaunchFailure(t *testing.T) {
	t.Run("server", func(t *testing.T) {
		l := newFakeLauncher()
		l.outcomes[config.RoleServer] = config.OutcomeFailed

		var fatal atomic.Value

		s := newTestSupervisor(t, l, func(o *config.Options) {
			o.OnFatal = func(err error) { fatal.Store(err) }
		})

		err := s.Start(testContext(t), config.ModeStandalone, testLaunch)

		launchErr, ok := stderrors.AsType[*errors.LaunchError](err)
		require.True(t, ok, "expected LaunchError, got %v", err)
		require.Equal(t, "server", launchErr.Role)
		require.Equal(t, "/usr/bin/java", launchErr.Path)
		require.Same(t, launchErr, fatal.Load())
		require.Equal(t, StateIdle, s.State())
	})

	t.Run("client tears down server", func(t *testing.T) {
		l := newFakeLauncher()
		l.scripts[config.RoleServer] = readyHub
		l.outcomes[config.RoleClient] = config.OutcomeFailed

		var fatalCalls atomic.Int32

		s := newTestSupervisor(t, l, func(o *config.Options) {
			o.OnFatal = func(error) { fatalCalls.Add(1) }
		})

		err := s.Start(testContext(t), config.ModeHub, testLaunch)

		launchErr, ok := stderrors.AsType[*errors.LaunchError](err)
		require.True(t, ok, "expected LaunchError, got %v", err)
		require.Equal(t, "client", launchErr.Role)
		require.EqualValues(t, 1, fatalCalls.Load())
		require.EqualValues(t, 1, l.handle(0).terminations.Load())
		require.Zero(t, s.Handles())
		require.Equal(t, StateIdle, s.State())
	})
}

func TestStart_ExitBeforeReady(t *testing.T) {
	l := newFakeLauncher()
	l.scripts[config.RoleServer] = func(h *fakeHandle) {
		h.stdout("Error: Unable to access jarfile")
		h.exit(1)
	}

	s := newTestSupervisor(t, l)

	err := s.Start(testContext(t), config.ModeStandalone, testLaunch)

	procErr, ok := stderrors.AsType[*errors.ProcessError](err)
	require.True(t, ok, "expected ProcessError, got %v", err)
	require.Equal(t, 1, procErr.ExitCode)
	require.Equal(t, "stderr tail", procErr.Stderr)
	require.Equal(t, StateIdle, s.State())
	require.Zero(t, l.handle(0).terminations.Load())
}

func TestStart_InvalidConfig(t *testing.T) {
	l := newFakeLauncher()
	s := newTestSupervisor(t, l)

	bad := testLaunch
	bad.Port = 0

	err := s.Start(testContext(t), config.ModeStandalone, bad)
	require.ErrorIs(t, err, errors.ErrInvalidConfig)
	require.Zero(t, l.spawnCount())
	require.Equal(t, StateIdle, s.State())
}

func TestStart_DiscoveryFailure(t *testing.T) {
	l := newFakeLauncher()
	notFound := &errors.BinaryNotFoundError{Name: "java", SearchedPaths: []string{"$PATH"}}

	s := newTestSupervisor(t, l, func(o *config.Options) {
		o.Discoverer = &fakeDiscoverer{err: notFound}
	})

	err := s.Start(testContext(t), config.ModeStandalone, testLaunch)
	require.ErrorIs(t, err, notFound)
	require.Zero(t, l.spawnCount())
	require.Equal(t, StateIdle, s.State())
}

func TestStop_DuringStart(t *testing.T) {
	l := newFakeLauncher()
	s := newTestSupervisor(t, l)
	ctx := testContext(t)

	errs := make(chan error, 1)

	go func() { errs <- s.Start(ctx, config.ModeStandalone, testLaunch) }()

	require.Eventually(t, func() bool { return s.Handles() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Stop(ctx))
	require.ErrorIs(t, <-errs, errors.ErrStopped)
	require.Equal(t, StateIdle, s.State())
	require.EqualValues(t, 1, l.handle(0).terminations.Load())

	// The supervisor is reusable afterwards.
	l.mu.Lock()
	l.scripts[config.RoleServer] = readyStandalone
	l.mu.Unlock()

	require.NoError(t, s.Start(ctx, config.ModeStandalone, testLaunch))
	require.Equal(t, 2, l.spawnCount())
}

func TestStop_DuringHubClientStage(t *testing.T) {
	l := newFakeLauncher()
	l.scripts[config.RoleServer] = readyHub

	s := newTestSupervisor(t, l)
	ctx := testContext(t)

	errs := make(chan error, 1)

	go func() { errs <- s.Start(ctx, config.ModeHub, testLaunch) }()

	require.Eventually(t, func() bool { return s.Handles() == 2 }, time.Second, time.Millisecond)
	require.Equal(t, StateAwaitingClient, s.State())

	require.NoError(t, s.Stop(ctx))
	require.ErrorIs(t, <-errs, errors.ErrStopped)
	require.Zero(t, s.Handles())
	require.Equal(t, StateIdle, s.State())
}

func TestStop_SignalsOnceAcrossConcurrentCalls(t *testing.T) {
	l := newFakeLauncher()
	l.ignoreTerm = true
	l.scripts[config.RoleServer] = readyStandalone

	s := newTestSupervisor(t, l)
	require.NoError(t, s.Start(testContext(t), config.ModeStandalone, testLaunch))

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	errs := make(chan error, 3)

	for range 3 {
		go func() { errs <- s.Stop(short) }()
	}

	for range 3 {
		require.ErrorIs(t, <-errs, context.DeadlineExceeded)
	}

	h := l.handle(0)
	require.EqualValues(t, 1, h.terminations.Load())
	require.Equal(t, StateStopping, s.State())

	err := s.Start(testContext(t), config.ModeStandalone, testLaunch)
	require.ErrorIs(t, err, errors.ErrStopping)

	h.exit(143)

	require.Eventually(t, func() bool { return s.State() == StateIdle }, time.Second, time.Millisecond)
	require.Zero(t, s.Handles())
}

func TestHandleAbnormalExit(t *testing.T) {
	t.Run("terminates every child without waiting", func(t *testing.T) {
		l := newFakeLauncher()
		l.ignoreTerm = true
		l.scripts[config.RoleServer] = readyHub
		l.scripts[config.RoleClient] = registerClient

		s := newTestSupervisor(t, l)
		require.NoError(t, s.Start(testContext(t), config.ModeHub, testLaunch))

		s.HandleAbnormalExit()

		require.Equal(t, StateStopping, s.State())
		require.EqualValues(t, 1, l.handle(0).terminations.Load())
		require.EqualValues(t, 1, l.handle(1).terminations.Load())

		l.handle(0).exit(143)
		l.handle(1).exit(143)

		require.Eventually(t, func() bool { return s.State() == StateIdle }, time.Second, time.Millisecond)
	})

	t.Run("idle is a no-op", func(t *testing.T) {
		l := newFakeLauncher()
		s := newTestSupervisor(t, l)

		s.HandleAbnormalExit()

		require.Equal(t, StateIdle, s.State())
	})

	t.Run("interrupts a pending start", func(t *testing.T) {
		l := newFakeLauncher()
		s := newTestSupervisor(t, l)
		ctx := testContext(t)

		errs := make(chan error, 1)

		go func() { errs <- s.Start(ctx, config.ModeStandalone, testLaunch) }()

		require.Eventually(t, func() bool { return s.Handles() == 1 }, time.Second, time.Millisecond)

		s.HandleAbnormalExit()

		require.ErrorIs(t, <-errs, errors.ErrStopped)
		require.Eventually(t, func() bool { return s.State() == StateIdle }, time.Second, time.Millisecond)
	})
}

func TestWatch_UnexpectedExitWhileReady(t *testing.T) {
	l := newFakeLauncher()
	l.scripts[config.RoleServer] = readyStandalone

	s := newTestSupervisor(t, l)
	require.NoError(t, s.Start(testContext(t), config.ModeStandalone, testLaunch))

	l.handle(0).exit(1)

	require.Eventually(t, func() bool { return s.State() == StateIdle }, time.Second, time.Millisecond)
	require.Zero(t, s.Handles())
}

func TestStart_CallerContextDoesNotCancelStart(t *testing.T) {
	release := make(chan struct{})

	l := newFakeLauncher()
	l.scripts[config.RoleServer] = func(h *fakeHandle) {
		<-release
		readyStandalone(h)
	}

	s := newTestSupervisor(t, l)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Start(ctx, config.ModeStandalone, testLaunch)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StateStarting, s.State())

	close(release)

	require.NoError(t, s.Start(testContext(t), config.ModeStandalone, testLaunch))
	require.Equal(t, 1, l.spawnCount())
	require.Zero(t, l.handle(0).terminations.Load())
}

func TestStart_OutputCallbackReceivesBothRoles(t *testing.T) {
	l := newFakeLauncher()
	l.scripts[config.RoleServer] = readyHub
	l.scripts[config.RoleClient] = registerClient

	var (
		mu    sync.Mutex
		roles []config.Role
	)

	s := newTestSupervisor(t, l, func(o *config.Options) {
		o.OnOutput = func(line config.Line) {
			mu.Lock()
			defer mu.Unlock()

			roles = append(roles, line.Role)
		}
	})

	require.NoError(t, s.Start(testContext(t), config.ModeHub, testLaunch))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return slices.Contains(roles, config.RoleServer) && slices.Contains(roles, config.RoleClient)
	}, time.Second, 5*time.Millisecond)
}

func TestOutputCallback_MayStopTheGrid(t *testing.T) {
	l := newFakeLauncher()
	l.ignoreTerm = true
	started := make(chan struct{})
	l.scripts[config.RoleServer] = func(h *fakeHandle) {
		readyStandalone(h)
		<-started
		h.stdout("INFO - Shutting down on request")
		// Like a real child, it is only done once its output was consumed.
		h.exit(0)
	}

	stopped := make(chan error, 1)

	var s *Supervisor

	s = newTestSupervisor(t, l, func(o *config.Options) {
		o.OnOutput = func(line config.Line) {
			if strings.Contains(line.Text, "Shutting down on request") {
				stopped <- s.Stop(context.Background())
			}
		}
	})

	require.NoError(t, s.Start(testContext(t), config.ModeStandalone, testLaunch))
	close(started)

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Stop called from the output callback did not return")
	}

	require.Equal(t, StateIdle, s.State())
	require.Zero(t, s.Handles())
}

func TestOutputQueue_DeliversInOrder(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)

	q := newOutputQueue(func(line config.Line) {
		mu.Lock()
		defer mu.Unlock()

		got = append(got, line.Text)
	})

	want := make([]string, 0, 100)

	for i := range 100 {
		text := fmt.Sprintf("line %d", i)
		want = append(want, text)
		q.push(config.Line{Role: config.RoleServer, Stream: config.StreamStdout, Text: text})
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(got) == len(want)
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	require.Equal(t, want, got)
}

func TestSupervisors_AreIndependent(t *testing.T) {
	l1 := newFakeLauncher()
	l1.scripts[config.RoleServer] = readyStandalone

	l2 := newFakeLauncher()
	l2.scripts[config.RoleServer] = readyStandalone

	s1 := newTestSupervisor(t, l1)
	s2 := newTestSupervisor(t, l2)
	ctx := testContext(t)

	require.NoError(t, s1.Start(ctx, config.ModeStandalone, testLaunch))
	require.Equal(t, StateIdle, s2.State())

	require.NoError(t, s2.Start(ctx, config.ModeStandalone, testLaunch))
	require.NoError(t, s1.Stop(ctx))

	require.Equal(t, StateIdle, s1.State())
	require.Equal(t, StateReady, s2.State())
}

func TestClose(t *testing.T) {
	l := newFakeLauncher()
	l.scripts[config.RoleServer] = readyStandalone

	s := newTestSupervisor(t, l, func(o *config.Options) { o.DisableExitHook = false })
	ctx := testContext(t)

	require.NotNil(t, s.exitHook)
	require.NoError(t, s.Start(ctx, config.ModeStandalone, testLaunch))
	require.NoError(t, s.Close(ctx))
	require.Equal(t, StateIdle, s.State())
	require.ErrorIs(t, s.Start(ctx, config.ModeStandalone, testLaunch), errors.ErrClosed)
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state  State
		want   string
		active bool
	}{
		{StateIdle, "idle", false},
		{StateStarting, "starting", true},
		{StateAwaitingClient, "awaiting_client", true},
		{StateReady, "ready", true},
		{StateStopping, "stopping", false},
		{State(42), "unknown(42)", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.state.String())
			require.Equal(t, tt.active, tt.state.IsActive())
		})
	}
}
