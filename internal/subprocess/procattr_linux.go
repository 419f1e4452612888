//go:build linux

package subprocess

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureProcAttr asks the kernel to SIGTERM the child when the
// supervising process dies.
func configureProcAttr(cmd *exec.Cmd, parentDeathSignal bool) {
	if !parentDeathSignal {
		return
	}

	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}

	cmd.SysProcAttr.Pdeathsig = unix.SIGTERM
}
