//go:build !windows

package infrastructure

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup starts the engine as the leader of its own process
// group; cancelling the command kills the whole group, helpers included
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}
}

func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	// The group outlives its leader while any member is alive
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	return cmd.Process.Kill()
}
