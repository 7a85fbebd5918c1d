//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Isolate starts cmd in its own process group so the engine and any helper
// it spawns can be killed together.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
