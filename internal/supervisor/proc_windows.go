//go:build windows

package supervisor

import "os/exec"

func configureProcess(cmd *exec.Cmd) {}

func terminateGraceful(cmd *exec.Cmd) { killProcess(cmd) }

func terminateForced(cmd *exec.Cmd) { killProcess(cmd) }

func killProcess(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
