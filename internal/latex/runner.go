package latex

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/hwdocs/go-md2tex/internal/process"
)

// waitDelay bounds how long Wait blocks on pipes after the group is killed.
const waitDelay = 5 * time.Second

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. The command runs in its
// own process group in dir, and cancelling ctx kills the whole group.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- engine name comes from config or env
	cmd.Dir = dir
	process.Isolate(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return nil
	}
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting command: %w", err)
	}

	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout.String(), stderr.String(), ctxErr
	}
	return stdout.String(), stderr.String(), err
}
