//go:build !linux

package subprocess

import "os/exec"

// configureProcAttr is a no-op: only Linux can signal a child when its
// parent dies.
func configureProcAttr(_ *exec.Cmd, _ bool) {}
