//go:build !windows

package updater

import "syscall"

// detachedAttr puts the child in its own session so it survives the parent.
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
