package subprocess

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/wagiedev/selenium-grid-go/internal/config"
)

// Launcher spawns children with exec. It implements config.Launcher.
type Launcher struct {
	log               *slog.Logger
	parentDeathSignal bool
}

// Compile-time verification that Launcher implements config.Launcher.
var _ config.Launcher = (*Launcher)(nil)

// NewLauncher creates a launcher.
//
// When parentDeathSignal is set, children started on Linux receive SIGTERM
// from the kernel if the supervising process dies.
func NewLauncher(log *slog.Logger, parentDeathSignal bool) *Launcher {
	return &Launcher{
		log:               log.With("component", "launcher"),
		parentDeathSignal: parentDeathSignal,
	}
}

// Spawn starts the child described by spec.
//
// ctx is only checked before the launch. The child is not tied to it and
// keeps running until terminated or until it exits on its own.
func (l *Launcher) Spawn(ctx context.Context, spec config.ProcessSpec) config.SpawnResult {
	if err := ctx.Err(); err != nil {
		return config.SpawnResult{Outcome: config.OutcomeFailed, Err: err}
	}

	l.log.Debug("Spawning process", "role", spec.Role, "path", spec.Path, "args", spec.Args)

	//nolint:gosec // G204: launching the resolved grid binaries is the point
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	configureProcAttr(cmd, l.parentDeathSignal)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return l.failed(spec, fmt.Errorf("stdout pipe: %w", err))
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return l.failed(spec, fmt.Errorf("stderr pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		if isAddressInUse(err) {
			l.log.Info("Address already in use at spawn", "role", spec.Role, "error", err)

			return config.SpawnResult{Outcome: config.OutcomeAddressInUse, Err: err}
		}

		return l.failed(spec, fmt.Errorf("start process: %w", err))
	}

	proc := newProcess(l.log, spec.Role, cmd)
	proc.run(stdout, stderr, spec.OnLine)

	l.log.Info("Process started", "role", spec.Role, "pid", proc.PID(), "process_id", proc.ID())

	return config.SpawnResult{Outcome: config.OutcomeSpawned, Handle: proc}
}

func (l *Launcher) failed(spec config.ProcessSpec, err error) config.SpawnResult {
	l.log.Error("Failed to spawn process", "role", spec.Role, "path", spec.Path, "error", err)

	return config.SpawnResult{Outcome: config.OutcomeFailed, Err: err}
}
