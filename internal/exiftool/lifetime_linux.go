//go:build linux

package exiftool

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// tieLifetimeToParent asks the kernel to send SIGTERM to the child when the
// spawning thread dies. The signal follows the OS thread, not the process.
// startProcess holds its thread across Start, and the runtime only retires a
// thread whose goroutine exits while still locked to it; nothing in this
// program does that, so the spawn thread lives as long as the process.
func tieLifetimeToParent(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Pdeathsig = unix.SIGTERM
}
