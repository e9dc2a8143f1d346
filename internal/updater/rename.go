package updater

import (
	"fmt"
	"os"
	"time"
)

// renameWithRetry renames src to dst, retrying every interval until budget
// is spent. The target of an update is often still locked by the process
// that is exiting, so the first attempts are expected to fail on Windows.
func renameWithRetry(src, dst string, budget, interval time.Duration) error {
	deadline := time.Now().Add(budget)
	for {
		err := os.Rename(src, dst)
		if err == nil {
			return nil
		}
		if !time.Now().Add(interval).Before(deadline) {
			return fmt.Errorf("%w: rename %s -> %s: %v", ErrFileSystem, src, dst, err)
		}
		time.Sleep(interval)
	}
}

// fileExists reports whether path names an existing file.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
