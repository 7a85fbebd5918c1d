package process

// Notes:
// - KillProcessGroup: only invalid PIDs are used here. Killing a real group
//   is covered by the latex compiler timeout test.
// - PID 0 and negative PIDs are rejected before any syscall.

import (
	"os/exec"
	"testing"
)

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	for _, pid := range []int{999999999, 0, -1} {
		KillProcessGroup(pid)
	}
}

func TestIsolate(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("true")
	Isolate(cmd)
	if cmd.SysProcAttr == nil {
		t.Fatal("Isolate() left SysProcAttr nil")
	}

	// Second call keeps the existing attributes.
	attr := cmd.SysProcAttr
	Isolate(cmd)
	if cmd.SysProcAttr != attr {
		t.Error("Isolate() replaced existing SysProcAttr")
	}
}
