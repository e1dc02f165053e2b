package launcher

import (
	"context"
	"os/exec"
)

// ProcessStarter starts commands as detached operating system processes.
type ProcessStarter struct{}

// Start spawns the command and releases it without waiting.
func (ProcessStarter) Start(ctx context.Context, command Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// #nosec G204
	process := exec.Command(command.Program, command.Args...)
	configureProcess(process, command)
	if err := process.Start(); err != nil {
		return err
	}
	return process.Process.Release()
}

var _ Starter = ProcessStarter{}
