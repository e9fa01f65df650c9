//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureProcess puts the worker in its own process group so that
// termination signals reach any children it spawns.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func signalProcess(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if pid <= 0 {
		return
	}
	if pgid, err := syscall.Getpgid(pid); err == nil && pgid > 0 {
		_ = syscall.Kill(-pgid, sig)
		return
	}
	// Group already gone; signalling a reaped process is a no-op.
	_ = cmd.Process.Signal(sig)
}

func terminateGraceful(cmd *exec.Cmd) { signalProcess(cmd, syscall.SIGTERM) }

func terminateForced(cmd *exec.Cmd) { signalProcess(cmd, syscall.SIGKILL) }
