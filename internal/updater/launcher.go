package updater

import (
	"fmt"
	"os/exec"
)

// Launcher starts a program that outlives the caller.
type Launcher interface {
	Start(path string, args []string) error
}

// ProcessLauncher starts detached OS processes.
type ProcessLauncher struct{}

// Start launches path with args and returns once the process is running.
// The child is not waited for.
func (ProcessLauncher) Start(path string, args []string) error {
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = detachedAttr()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start %s: %v", ErrSpawn, path, err)
	}
	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("%w: release %s: %v", ErrSpawn, path, err)
	}
	return nil
}
