package seleniumgrid

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// scriptedHandle is a child that prints its readiness line on spawn and
// exits on Terminate.
type scriptedHandle struct {
	id   string
	role Role

	mu         sync.Mutex
	terminated int
	done       chan struct{}
	once       sync.Once
}

func (h *scriptedHandle) ID() string            { return h.id }
func (h *scriptedHandle) Role() Role            { return h.role }
func (h *scriptedHandle) PID() int              { return 1 }
func (h *scriptedHandle) Done() <-chan struct{} { return h.done }
func (h *scriptedHandle) ExitCode() int         { return -1 }
func (h *scriptedHandle) Err() error            { return nil }
func (h *scriptedHandle) Stderr() string        { return "" }

func (h *scriptedHandle) Terminate() error {
	h.mu.Lock()
	h.terminated++
	h.mu.Unlock()

	h.once.Do(func() { close(h.done) })

	return nil
}

func (h *scriptedHandle) terminations() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.terminated
}

// scriptedLauncher emits the readiness line each role waits for.
type scriptedLauncher struct {
	mu      sync.Mutex
	specs   []ProcessSpec
	handles []*scriptedHandle
	failAll bool
}

func (l *scriptedLauncher) Spawn(_ context.Context, spec ProcessSpec) SpawnResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.specs = append(l.specs, spec)

	if l.failAll {
		return SpawnResult{Outcome: OutcomeFailed, Err: fmt.Errorf("fork/exec %s: permission denied", spec.Path)}
	}

	h := &scriptedHandle{
		id:   fmt.Sprintf("%s-%d", spec.Role, len(l.handles)),
		role: spec.Role,
		done: make(chan struct{}),
	}
	l.handles = append(l.handles, h)

	go func() {
		switch {
		case spec.Role == RoleClient:
			spec.OnLine(Line{Role: RoleClient, Stream: StreamStdout, Text: "HUB Register - Registered with grid hub"})
		case len(spec.Args) > 3 && spec.Args[2] == "-role":
			spec.OnLine(Line{Role: RoleServer, Stream: StreamStderr, Text: "INFO - Started SocketConnector@0.0.0.0:4444"})
		default:
			spec.OnLine(Line{Role: RoleServer, Stream: StreamStdout, Text: "INFO - Started org.openqa.jetty.jetty.servlet.ServletHandler"})
		}
	}()

	return SpawnResult{Outcome: OutcomeSpawned, Handle: h}
}

func (l *scriptedLauncher) spawned() []*scriptedHandle {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]*scriptedHandle(nil), l.handles...)
}

type staticDiscoverer struct{}

func (staticDiscoverer) Discover(_ context.Context, mode Mode) (*Binaries, error) {
	bins := &Binaries{Java: "/usr/bin/java", ServerJar: "/opt/selenium-server-standalone.jar"}
	if mode == ModeHub {
		bins.Client = "/usr/local/bin/phantomjs"
	}

	return bins, nil
}

func testOptions(l Launcher) []Option {
	return []Option{
		WithLauncher(l),
		WithDiscoverer(staticDiscoverer{}),
		WithExitHook(false),
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	return ctx
}
