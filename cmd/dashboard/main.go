// Package main provides the Chivalry 2 Admin Dashboard entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	clicmd "github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/cli/dashboard"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/config"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/logging"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/updater"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The update flow runs before anything else. In the updater role the
	// process exists only to apply the update.
	if res := selfUpdate(ctx, args); res.Exit() {
		logging.Close()
		if res.Err != nil {
			return 1
		}
		return 0
	}

	root := clicmd.NewRootCommand()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func selfUpdate(ctx context.Context, args []string) updater.Result {
	updaterRole := updater.IsUpdaterInvocation(args)

	cfg, err := config.LoadApp(configPath(args))
	if err != nil {
		// The command tree reports the broken config itself; the update
		// check still runs on defaults.
		cfg = config.Default()
	}
	if updaterRole {
		cfg.Logging = updaterLogging(cfg.Logging)
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		fmt.Fprintln(os.Stderr, "Error: setup logging:", err)
	}

	log := logging.WithComponent("updater")
	status := func(msg string) { log.Debug(msg) }
	if updaterRole {
		status = func(msg string) { log.Info(msg) }
	}

	role := updater.RoleMain
	if updaterRole {
		role = updater.RoleUpdater
	}
	o := updater.New(cfg.Update,
		updater.WithMetrics(updater.NewMetrics(updater.RoleTextfile(cfg.Update.MetricsFile, role))),
		updater.WithCallbacks(status, nil),
	)
	return o.Handle(ctx, args)
}

// configPath picks --config out of args without knowing the rest of the
// command line. Empty means the default location. An updater invocation
// carries the user's flags only after "--", so those are searched instead.
func configPath(args []string) string {
	if updater.IsUpdaterInvocation(args) {
		task, err := updater.ParseTask(args)
		if err != nil {
			return ""
		}
		args = task.Passthrough
	}

	fs := pflag.NewFlagSet("dashboard", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	path := fs.StringP("config", "c", "", "")
	_ = fs.Parse(args)
	return *path
}

// updaterLogging adapts the logging config for the detached updater, which
// has no console: records go to a file in the app data directory.
func updaterLogging(cfg logging.Config) logging.Config {
	if cfg.File == "" {
		cfg.File = filepath.Join(updater.AppDataDir(), "updater.log")
	}
	cfg.Output = "discard"
	return cfg
}
