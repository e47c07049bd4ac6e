//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

func hideWindow(*exec.Cmd) {}

func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
