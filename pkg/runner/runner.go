// Package runner executes external commands with a bounded lifetime.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds commands started without an explicit timeout
const DefaultTimeout = 10 * time.Second

// ErrTimeout is returned when a command does not finish in time
var ErrTimeout = errors.New("command timed out")

// Runner starts external commands. The zero value uses DefaultTimeout.
type Runner struct {
	Timeout time.Duration
}

// New creates a runner with the given per-command timeout
func New(timeout time.Duration) *Runner {
	return &Runner{Timeout: timeout}
}

func (r *Runner) timeout() time.Duration {
	if r == nil || r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// Output runs the command and returns its stdout.
// Stderr is folded into the error when the command fails.
func (r *Runner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, name, args...)
	hideWindow(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if parentErr := ctx.Err(); parentErr != nil {
		return nil, fmt.Errorf("%s interrupted: %w", name, parentErr)
	}
	if cmdCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%s: %w after %v", name, ErrTimeout, r.timeout())
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return stdout.Bytes(), fmt.Errorf("%s failed: %w", name, err)
	}

	return stdout.Bytes(), nil
}

// Run runs the command and discards its output
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	_, err := r.Output(ctx, name, args...)
	return err
}

// Start launches a long-lived process without waiting for it, detached from
// the daemon so it survives a daemon restart.
func (r *Runner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return cmd.Process.Release()
}

// Spawn starts a detached copy of name with extra environment variables and
// its output sent to logFile, returning the child's PID.
func Spawn(name string, args []string, env []string, logFile *os.File) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to spawn %s: %w", name, err)
	}
	pid := cmd.Process.Pid
	return pid, cmd.Process.Release()
}

// Exists checks if a command is available in PATH
func Exists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
