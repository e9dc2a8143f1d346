//go:build !windows

package game

func newPlatformDriver(Config) (Driver, error) {
	return nil, ErrUnsupported
}
