package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/config"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/game"
)

type nopDriver struct{}

func (nopDriver) OpenConsole() error      { return nil }
func (nopDriver) SendCommand(string) bool { return true }

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "sanctions.db")
	cfg.Logging.Output = "discard"
	return cfg
}

func TestContext_StoreIsLazyAndShared(t *testing.T) {
	cfg := testConfig(t)
	c := New(cfg, "")

	_, err := os.Stat(cfg.Database.Path)
	assert.True(t, os.IsNotExist(err), "database must not exist before first use")

	s1, err := c.Store()
	require.NoError(t, err)
	s2, err := c.Store()
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	_, err = os.Stat(cfg.Database.Path)
	assert.NoError(t, err)

	require.NoError(t, c.Close())
}

func TestContext_Console(t *testing.T) {
	calls := 0
	c := New(testConfig(t), "", WithDriverFactory(func(game.Config) (game.Driver, error) {
		calls++
		return nopDriver{}, nil
	}))
	defer c.Close()

	con1, err := c.Console()
	require.NoError(t, err)
	con2, err := c.Console()
	require.NoError(t, err)
	assert.Same(t, con1, con2)
	assert.Equal(t, 1, calls)
	assert.NoError(t, con1.AdminSay("hello"))
}

func TestContext_ConsoleUnsupported(t *testing.T) {
	c := New(testConfig(t), "", WithDriverFactory(func(game.Config) (game.Driver, error) {
		return nil, game.ErrUnsupported
	}))
	defer c.Close()

	_, err := c.Console()
	assert.ErrorIs(t, err, game.ErrUnsupported)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	dbPath := filepath.Join(dir, "data", "sanctions.db")

	data := "logging:\n  level: debug\n  output: discard\ndatabase:\n  path: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	c, err := Load(path)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, path, c.ConfigPath)
	assert.Equal(t, dbPath, c.Config.Database.Path)
	assert.Equal(t, "debug", c.Config.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, game.DefaultWindowTitle, c.Config.Game.WindowTitle)
}

func TestLoad_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: \"\"\n"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}
