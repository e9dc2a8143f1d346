//go:build !windows

package game

import (
	"errors"
	"testing"
)

func TestNewDriver_Unsupported(t *testing.T) {
	d, err := NewDriver(DefaultConfig())
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("NewDriver() error = %v, want ErrUnsupported", err)
	}
	if d != nil {
		t.Error("NewDriver() should not return a driver")
	}
}
