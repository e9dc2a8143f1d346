//go:build !windows

package updater

// fileVersion is unavailable outside Windows; the build version is used instead.
func fileVersion(string) (Version, bool) {
	return Version{}, false
}
