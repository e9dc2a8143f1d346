// Package app wires the dashboard's long-lived components together.
package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/config"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/game"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/logging"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/sanctions"
)

// Context owns the configuration and the components built from it. The
// store and the game console are opened on first use so that commands
// which need neither never touch the database or the game window.
type Context struct {
	Config     config.AppConfig
	ConfigPath string

	newDriver func(game.Config) (game.Driver, error)

	mu      sync.Mutex
	store   *sanctions.Store
	console *game.Console
}

// Option configures a Context.
type Option func(*Context)

// WithDriverFactory overrides how the game input driver is created.
func WithDriverFactory(fn func(game.Config) (game.Driver, error)) Option {
	return func(c *Context) { c.newDriver = fn }
}

// New creates a Context for cfg, loaded from path.
func New(cfg config.AppConfig, path string, opts ...Option) *Context {
	c := &Context{
		Config:     cfg,
		ConfigPath: path,
		newDriver:  game.NewDriver,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the configuration at path (defaults when missing), applies
// its logging section and returns a Context for it.
func Load(path string, opts ...Option) (*Context, error) {
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.LoadApp(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	return New(cfg, path, opts...), nil
}

// SaveConfig validates the in-memory configuration and writes it back to
// ConfigPath. Comments from the original file are not preserved.
func (c *Context) SaveConfig() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	return config.Save(c.ConfigPath, c.Config)
}

// Store returns the sanctions store, opening it on first call.
func (c *Context) Store() (*sanctions.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		return c.store, nil
	}
	s, err := sanctions.Open(c.Config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open sanctions database: %w", err)
	}
	logging.Debug("Opened sanctions database", "path", c.Config.Database.Path)
	c.store = s
	return s, nil
}

// Console returns the game console, creating its driver on first call.
func (c *Context) Console() (*game.Console, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.console != nil {
		return c.console, nil
	}
	d, err := c.newDriver(c.Config.Game)
	if err != nil {
		return nil, err
	}
	c.console = game.NewConsole(d, c.Config.Game)
	return c.console, nil
}

// Close releases everything the Context opened.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.store != nil {
		errs = append(errs, c.store.Close())
		c.store = nil
	}
	c.console = nil
	errs = append(errs, logging.Close())
	return errors.Join(errs...)
}
