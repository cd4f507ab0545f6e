// Package process prepares external renderer commands so that cancelling
// the run terminates the renderer together with every child it spawned.
package process

import (
	"os/exec"
	"time"
)

// WaitDelay bounds how long Wait blocks on output pipes after the process
// has been killed. soffice forks helpers that can hold them open.
const WaitDelay = 5 * time.Second

// Isolate places cmd in its own process group (job on Windows) and installs a
// Cancel hook that kills the whole tree when the command's context is done.
// Must be called before cmd.Start.
func Isolate(cmd *exec.Cmd) {
	setGroup(cmd)
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		KillTree(cmd.Process.Pid)
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = WaitDelay
}
