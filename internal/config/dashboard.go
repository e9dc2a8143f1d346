package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/game"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/logging"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/updater"
)

// FileName is the config file looked up next to the app data.
const FileName = "config.yaml"

// AppConfig is the complete dashboard configuration.
type AppConfig struct {
	Logging  logging.Config `yaml:"logging" json:"logging"`
	Update   updater.Config `yaml:"update" json:"update"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	Game     game.Config    `yaml:"game" json:"game"`
}

// DatabaseConfig locates the sanctions database.
type DatabaseConfig struct {
	// Path is the SQLite file. ":memory:" keeps everything in memory.
	Path string `yaml:"path" json:"path"`
}

// Default returns the configuration used when no file exists.
func Default() AppConfig {
	return AppConfig{
		Logging: logging.DefaultConfig(),
		Update:  updater.DefaultConfig(),
		Database: DatabaseConfig{
			Path: filepath.Join(updater.AppDataDir(), "sanctions.db"),
		},
		Game: game.DefaultConfig(),
	}
}

// DefaultPath returns the per-user config file path.
func DefaultPath() string {
	return filepath.Join(updater.AppDataDir(), FileName)
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.Update.Validate(); err != nil {
		return err
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if err := c.Game.Validate(); err != nil {
		return err
	}
	return nil
}

// LoadApp loads the dashboard configuration from path over the defaults.
// An empty path means DefaultPath; a missing file means defaults.
func LoadApp(path string) (AppConfig, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if err := LoadOrDefault(path, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// WriteTemplate writes the commented default configuration to path. An
// existing file is backed up first and its backup path returned.
func WriteTemplate(path string) (backup string, err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		backup, err = Backup(path)
		if err != nil {
			return "", err
		}
	}
	return backup, writeFile(path, []byte(DefaultTemplate))
}
