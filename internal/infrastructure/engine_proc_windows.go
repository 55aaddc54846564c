//go:build windows

package infrastructure

import (
	"os/exec"
	"syscall"
)

// TODO: assign the engine to a job object so its helpers die with it
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
