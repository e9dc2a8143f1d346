//go:build windows

package updater

// prepareExecutable is a no-op on Windows; executability follows the .exe suffix.
func prepareExecutable(path string) error {
	return nil
}
