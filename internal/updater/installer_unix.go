//go:build !windows

package updater

import (
	"fmt"
	"os"
)

// prepareExecutable marks the downloaded artifact executable; a fresh
// download is created without the execute bit on Unix.
func prepareExecutable(path string) error {
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("%w: chmod: %v", ErrFileSystem, err)
	}
	return nil
}
