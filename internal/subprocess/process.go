package subprocess

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/selenium-grid-go/internal/config"
)

const (
	// maxScanTokenSize is the maximum length of a single output line.
	maxScanTokenSize = 1024 * 1024 // 1MB
	// maxStderrBufferSize caps the stderr tail kept for error reporting.
	// The callback still receives every line once the cap is reached.
	maxStderrBufferSize = 64 * 1024 // 64KB
)

// Process is a running child. It implements config.Handle.
type Process struct {
	log  *slog.Logger
	id   string
	role config.Role
	cmd  *exec.Cmd
	done chan struct{}

	mu        sync.Mutex
	closing   bool // Terminate has been called (intentional shutdown)
	exited    bool
	exitCode  int
	waitErr   error
	stderrBuf strings.Builder
}

// Compile-time verification that Process implements config.Handle.
var _ config.Handle = (*Process)(nil)

func newProcess(log *slog.Logger, role config.Role, cmd *exec.Cmd) *Process {
	id := ulid.Make().String()

	return &Process{
		log:      log.With("process_id", id, "role", role),
		id:       id,
		role:     role,
		cmd:      cmd,
		done:     make(chan struct{}),
		exitCode: -1,
	}
}

// ID returns the unique identifier of this child.
func (p *Process) ID() string { return p.id }

// Role returns the role the child was spawned for.
func (p *Process) Role() config.Role { return p.role }

// PID returns the OS process ID.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return 0
	}

	return p.cmd.Process.Pid
}

// Done is closed once the child has exited and its output is drained.
func (p *Process) Done() <-chan struct{} { return p.done }

// ExitCode returns the exit code, or -1 while running or when the child was
// ended by a signal.
func (p *Process) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.exitCode
}

// Err returns the error reported by waiting on the child.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.waitErr
}

// Stderr returns the buffered stderr tail.
func (p *Process) Stderr() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stderrBuf.String()
}

// Terminate asks the child to exit with SIGTERM and returns immediately.
// Calling it after the child has exited is a no-op.
func (p *Process) Terminate() error {
	p.mu.Lock()
	p.closing = true
	exited := p.exited
	p.mu.Unlock()

	if exited || p.cmd.Process == nil {
		return nil
	}

	p.log.Debug("Sending SIGTERM", "pid", p.cmd.Process.Pid)

	var err error
	if runtime.GOOS == "windows" {
		err = p.cmd.Process.Kill()
	} else {
		err = p.cmd.Process.Signal(syscall.SIGTERM)
	}

	if err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("terminate %s process (pid %d): %w", p.role, p.cmd.Process.Pid, err)
	}

	return nil
}

// run drains both streams, then waits on the child and closes Done.
func (p *Process) run(stdout, stderr io.Reader, onLine func(config.Line)) {
	emit := func(stream config.Stream) func(string) {
		return func(text string) {
			if stream == config.StreamStderr {
				p.bufferStderr(text)
			}

			if onLine != nil {
				onLine(config.Line{Role: p.role, Stream: stream, Text: text})
			}
		}
	}

	var wg sync.WaitGroup

	wg.Go(func() {
		if err := scanLines(stdout, emit(config.StreamStdout)); err != nil {
			p.log.Debug("Stdout scanner error", "error", err)
		}
	})

	wg.Go(func() {
		if err := scanLines(stderr, emit(config.StreamStderr)); err != nil {
			p.log.Debug("Stderr scanner error", "error", err)
		}
	})

	go func() {
		defer close(p.done)

		// Reads must complete before Wait closes the pipes.
		wg.Wait()

		err := p.cmd.Wait()

		p.mu.Lock()
		p.exited = true
		p.waitErr = err
		p.exitCode = p.cmd.ProcessState.ExitCode()
		closing := p.closing
		p.mu.Unlock()

		switch {
		case closing:
			p.log.Debug("Process terminated during shutdown", "exit_code", p.exitCode)
		case err != nil:
			p.log.Warn("Process exited with error", "exit_code", p.exitCode, "error", err)
		default:
			p.log.Info("Process exited")
		}
	}()
}

func (p *Process) bufferStderr(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stderrBuf.Len() >= maxStderrBufferSize {
		return
	}

	if p.stderrBuf.Len() > 0 {
		p.stderrBuf.WriteString("\n")
	}

	p.stderrBuf.WriteString(line)
}

// scanLines calls fn for every line read from r, without the line terminator.
// A trailing carriage return is stripped so Windows-style output matches too.
func scanLines(r io.Reader, fn func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanTokenSize)

	for scanner.Scan() {
		fn(strings.TrimSuffix(scanner.Text(), "\r"))
	}

	return scanner.Err()
}
