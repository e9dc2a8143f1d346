// Package game sends admin commands to a running Chivalry 2 client by
// typing them into its in-game console.
package game

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnsupported is returned where keyboard emulation is not available.
	ErrUnsupported = errors.New("game input is not supported on this platform")

	// ErrWindowNotFound is returned when no game window is open.
	ErrWindowNotFound = errors.New("game window not found")

	// ErrCommandFailed is returned when a command could not be fully typed.
	ErrCommandFailed = errors.New("console command was not sent")
)

// DefaultWindowTitle is the game's top-level window title. The two trailing
// spaces are part of it.
const DefaultWindowTitle = "Chivalry 2  "

// Driver types into the game console.
type Driver interface {
	// OpenConsole focuses the game and opens its console.
	OpenConsole() error
	// SendCommand types text followed by Enter. It reports false when any
	// character could not be typed.
	SendCommand(text string) bool
}

// Config holds game driver settings.
type Config struct {
	// WindowTitle locates the game window.
	WindowTitle string `yaml:"window_title" json:"window_title"`

	// ConsoleKey is the character that opens the console. Empty picks one
	// from the active keyboard layout.
	ConsoleKey string `yaml:"console_key,omitempty" json:"console_key,omitempty"`

	// ConsoleVK, when non-zero, is sent as a raw virtual-key code instead of
	// ConsoleKey.
	ConsoleVK int `yaml:"console_vk,omitempty" json:"console_vk,omitempty"`

	KeyPress         time.Duration `yaml:"key_press" json:"key_press"`
	KeyDelay         time.Duration `yaml:"key_delay" json:"key_delay"`
	ConsoleOpenDelay time.Duration `yaml:"console_open_delay" json:"console_open_delay"`
	ListPlayersDelay time.Duration `yaml:"list_players_delay" json:"list_players_delay"`

	// Presets are saved ban/kick reasons, addressed by slot (0-9).
	Presets []string `yaml:"presets,omitempty" json:"presets,omitempty"`
}

// MaxPresets is the number of reason slots.
const MaxPresets = 10

// DefaultConfig returns the default driver configuration.
func DefaultConfig() Config {
	return Config{
		WindowTitle:      DefaultWindowTitle,
		KeyPress:         10 * time.Millisecond,
		KeyDelay:         10 * time.Millisecond,
		ConsoleOpenDelay: 80 * time.Millisecond,
		ListPlayersDelay: 500 * time.Millisecond,
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.WindowTitle == "" {
		return fmt.Errorf("game.window_title is required")
	}
	if len([]rune(c.ConsoleKey)) > 1 {
		return fmt.Errorf("game.console_key must be a single character, got %q", c.ConsoleKey)
	}
	if c.ConsoleVK < 0 || c.ConsoleVK > 0xFE {
		return fmt.Errorf("game.console_vk out of range: %d", c.ConsoleVK)
	}
	if c.KeyPress < 0 || c.KeyDelay < 0 || c.ConsoleOpenDelay < 0 || c.ListPlayersDelay < 0 {
		return fmt.Errorf("game delays must not be negative")
	}
	if len(c.Presets) > MaxPresets {
		return fmt.Errorf("game.presets holds at most %d entries, got %d", MaxPresets, len(c.Presets))
	}
	return nil
}

// Preset returns the reason saved in slot, or false when the slot is empty.
func (c *Config) Preset(slot int) (string, bool) {
	if slot < 0 || slot >= len(c.Presets) || c.Presets[slot] == "" {
		return "", false
	}
	return c.Presets[slot], true
}

// NewDriver returns the keyboard driver for the current platform.
func NewDriver(cfg Config) (Driver, error) {
	return newPlatformDriver(cfg)
}
