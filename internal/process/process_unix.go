//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

func setGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillTree kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; cmd.Process.Kill provides the fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
