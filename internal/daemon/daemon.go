// Package daemon manages the background watcher process through a PID file.
package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/bigpicturetv/bigpicturetv/pkg/runner"
)

// ChildEnv marks the re-executed background process
const ChildEnv = "BIGPICTURETV_DAEMON_CHILD"

// ErrNotRunning is returned by Stop when no live daemon owns the PID file
var ErrNotRunning = errors.New("daemon is not running or PID file is stale")

type Daemon struct {
	pidFile string

	// replaced in tests
	alive     func(ctx context.Context, pid int) (bool, error)
	terminate func(ctx context.Context, pid int) error
}

func New(pidFile string) *Daemon {
	return &Daemon{
		pidFile:   pidFile,
		alive:     pidAlive,
		terminate: terminatePID,
	}
}

// IsChild reports whether the current process is the spawned daemon
func IsChild() bool {
	return os.Getenv(ChildEnv) == "1"
}

func (d *Daemon) PIDFile() string {
	return d.pidFile
}

func (d *Daemon) WritePID() error {
	if err := os.MkdirAll(filepath.Dir(d.pidFile), 0755); err != nil {
		return errors.Wrap(err, "failed to create PID directory")
	}
	pid := os.Getpid()
	return os.WriteFile(d.pidFile, fmt.Appendf([]byte{}, "%d", pid), 0644)
}

func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read PID file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrap(err, "invalid PID in file")
	}

	return pid, nil
}

func (d *Daemon) RemovePID() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove PID file")
	}
	return nil
}

// IsRunning checks the PID file and removes it when the process is gone
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, err
	}

	if pid == 0 {
		return false, 0, nil
	}

	alive, err := d.alive(context.Background(), pid)
	if err != nil || !alive {
		_ = d.RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}

func (d *Daemon) Stop() error {
	running, pid, err := d.IsRunning()
	if err != nil {
		return errors.Wrap(err, "error checking daemon status")
	}

	if !running {
		return ErrNotRunning
	}

	if err := d.terminate(context.Background(), pid); err != nil {
		return errors.Wrapf(err, "failed to terminate process %d", pid)
	}

	return d.RemovePID()
}

// Spawn re-executes the current binary in the background with args,
// appending its output to logPath.
func Spawn(args []string, logPath string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, errors.Wrap(err, "failed to locate executable")
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return 0, errors.Wrap(err, "failed to create log directory")
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, errors.Wrap(err, "failed to open log file")
	}
	defer logFile.Close()

	return runner.Spawn(exe, args, []string{ChildEnv + "=1"}, logFile)
}

func pidAlive(ctx context.Context, pid int) (bool, error) {
	return process.PidExistsWithContext(ctx, int32(pid))
}

func terminatePID(ctx context.Context, pid int) error {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return err
	}
	return p.TerminateWithContext(ctx)
}
