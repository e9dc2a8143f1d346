//go:build windows

package updater

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// detachedAttr starts the child without a console and outside our process
// group, so closing the dashboard does not take the updater down with it.
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: windows.DETACHED_PROCESS | windows.CREATE_NEW_PROCESS_GROUP,
		HideWindow:    true,
	}
}
