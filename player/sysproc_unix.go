//go:build !windows

package player

import (
	"os/exec"
	"syscall"
)

// sysProcAttr puts the player in its own process group so terminal signals
// aimed at coursecast don't reach it.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	return cmd.Process.Kill()
}
