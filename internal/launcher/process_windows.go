//go:build windows

package launcher

import (
	"os/exec"
	"syscall"
)

// configureProcess passes wrapper command lines verbatim so cmd.exe receives
// the quoting produced by the serializer instead of Go's argv escaping.
func configureProcess(process *exec.Cmd, command Command) {
	if command.CommandLine == "" {
		return
	}
	process.SysProcAttr = &syscall.SysProcAttr{CmdLine: command.CommandLine}
}
