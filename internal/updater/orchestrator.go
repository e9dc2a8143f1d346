package updater

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/logging"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/version"
)

// Role is what a process invocation is for.
type Role int

const (
	// RoleMain is a normal dashboard start.
	RoleMain Role = iota
	// RoleUpdater is a spawned copy that applies an update and exits.
	RoleUpdater
)

// Catalog is the source of installable artifacts.
type Catalog interface {
	FetchCatalog(ctx context.Context) ([]Artifact, error)
}

// CheckResult is the outcome of one update check.
type CheckResult struct {
	Artifact       Artifact
	Found          bool
	CurrentVersion *Version
	Installed      InstalledState
	NeedsUpdate    bool
}

// Result tells the caller how to continue after Handle.
type Result struct {
	Role Role
	// Spawned is true when an updater process was started.
	Spawned bool
	// Err is the failure in the updater role. The main role never fails.
	Err error
}

// Exit reports whether the process must stop instead of running the
// normal program.
func (r Result) Exit() bool {
	return r.Role == RoleUpdater
}

// Orchestrator decides, once per process start, whether to apply an update,
// check for one, or do nothing.
type Orchestrator struct {
	cfg      Config
	catalog  Catalog
	selector *Selector
	launcher Launcher
	metrics  *Metrics
	status   StatusFunc
	progress ProgressFunc

	executable     func() (string, error)
	runningVersion func(path string) *Version
	packaged       func(path string) bool
	tempDir        string
}

// Option configures an Orchestrator during construction.
type Option func(*Orchestrator)

// WithCatalog overrides the default feed client.
func WithCatalog(c Catalog) Option {
	return func(o *Orchestrator) { o.catalog = c }
}

// WithLauncher overrides how processes are started.
func WithLauncher(l Launcher) Option {
	return func(o *Orchestrator) { o.launcher = l }
}

// WithMetrics records check and install outcomes.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithCallbacks sets the status and progress callbacks used in both roles.
func WithCallbacks(status StatusFunc, progress ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.status = status
		o.progress = progress
	}
}

// WithExecutable overrides how the running executable is located.
func WithExecutable(fn func() (string, error)) Option {
	return func(o *Orchestrator) { o.executable = fn }
}

// WithRunningVersion overrides how the running executable's version is read.
func WithRunningVersion(fn func(path string) *Version) Option {
	return func(o *Orchestrator) { o.runningVersion = fn }
}

// WithPackaged overrides the packaged-build detection.
func WithPackaged(fn func(path string) bool) Option {
	return func(o *Orchestrator) { o.packaged = fn }
}

// WithTempDir sets where the updater copy of the executable is written.
func WithTempDir(dir string) Option {
	return func(o *Orchestrator) { o.tempDir = dir }
}

// New creates an Orchestrator.
func New(cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:            cfg,
		selector:       NewSelector(cfg),
		launcher:       ProcessLauncher{},
		executable:     CurrentExecutable,
		runningVersion: RunningVersion,
		packaged:       IsPackaged,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.catalog == nil {
		o.catalog = NewCatalogClient(cfg.FeedURL, cfg.CatalogTimeout)
	}
	return o
}

func (o *Orchestrator) report(msg string) {
	if o.status != nil {
		o.status(msg)
	}
}

// Handle runs the update flow for a process started with args (without the
// program name). In the updater role it applies the update and returns with
// Exit() true. In the main role it may spawn an updater in the background
// and always returns with Exit() false.
func (o *Orchestrator) Handle(ctx context.Context, args []string) Result {
	if IsUpdaterInvocation(args) {
		return Result{Role: RoleUpdater, Err: o.applyUpdate(ctx, args)}
	}

	log := logging.WithComponent("updater")

	if HasSkipFlag(args) || !o.cfg.Enabled {
		log.Debug("Update check disabled")
		return Result{Role: RoleMain}
	}

	exe, err := o.executable()
	if err != nil {
		log.Debug("Cannot locate executable, skipping update check", "error", err)
		return Result{Role: RoleMain}
	}
	if !o.packaged(exe) {
		log.Debug("Not a packaged build, skipping update check", "path", exe)
		return Result{Role: RoleMain}
	}

	o.report("Checking for updates...")
	check, err := o.Check(ctx, exe)
	if err != nil {
		log.Info("Update check failed", "kind", KindOf(err), "error", err)
		return Result{Role: RoleMain}
	}
	if !check.NeedsUpdate {
		o.report("No updates available.")
		return Result{Role: RoleMain}
	}

	task := NewUpdateTask(check.Artifact, exe, args)
	if err := o.spawnUpdater(exe, task); err != nil {
		log.Warn("Could not start updater", "kind", KindOf(err), "error", err)
		return Result{Role: RoleMain}
	}

	log.Info("Updater started",
		"task_id", task.TaskID,
		"asset", check.Artifact.Name,
		"remote_id", task.RemoteIdentifier,
	)
	o.report("Update found. Starting updater...")
	return Result{Role: RoleMain, Spawned: true}
}

// Check fetches the catalog and decides whether the executable at exe
// should be updated. It never downloads or spawns anything.
func (o *Orchestrator) Check(ctx context.Context, exe string) (CheckResult, error) {
	var res CheckResult

	checkCtx, cancel := context.WithTimeout(ctx, o.cfg.CatalogTimeout)
	defer cancel()

	catalog, err := o.catalog.FetchCatalog(checkCtx)
	if err != nil {
		o.finishCheck(KindOf(err).String())
		return res, err
	}

	res.Artifact, res.Found = o.selector.SelectBest(catalog, filepath.Base(exe))
	if !res.Found || res.Artifact.DownloadURL == "" {
		res.Found = false
		o.finishCheck("no_candidate")
		return res, nil
	}

	res.CurrentVersion = o.runningVersion(exe)

	res.Installed, err = LoadState(o.cfg.statePath())
	if err != nil {
		o.finishCheck(KindOf(err).String())
		return res, err
	}

	res.NeedsUpdate = NeedsUpdate(res.CurrentVersion, res.Artifact, res.Installed)
	if res.NeedsUpdate {
		o.finishCheck("update_available")
	} else {
		o.finishCheck("up_to_date")
	}
	return res, nil
}

func (o *Orchestrator) finishCheck(result string) {
	o.metrics.observeCheck(result)
	o.metrics.Flush()
}

// spawnUpdater starts a temp copy of exe in the updater role, so the
// original file is free to be renamed while it is replaced.
func (o *Orchestrator) spawnUpdater(exe string, task UpdateTask) error {
	dir := o.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	updaterPath := filepath.Join(dir, fmt.Sprintf("%s_updater_%d%s", AppDirName, os.Getpid(), filepath.Ext(exe)))

	if err := copyExecutable(exe, updaterPath); err != nil {
		return err
	}
	return o.launcher.Start(updaterPath, task.Args())
}

func (o *Orchestrator) applyUpdate(ctx context.Context, args []string) error {
	task, err := ParseTask(args)
	if err != nil {
		logging.WithComponent("updater").Error("Invalid updater invocation", "error", err)
		return err
	}

	installer := NewInstaller(o.cfg, o.launcher,
		WithStatus(o.status),
		WithProgress(o.progress),
		WithInstallerMetrics(o.metrics),
	)
	return installer.Apply(ctx, task)
}

// copyExecutable copies src to dst with the source's permissions.
func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: open executable: %v", ErrFileSystem, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat executable: %v", ErrFileSystem, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()|0700)
	if err != nil {
		return fmt.Errorf("%w: create updater copy: %v", ErrFileSystem, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("%w: copy executable: %v", ErrFileSystem, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: close updater copy: %v", ErrFileSystem, err)
	}
	return nil
}

// CurrentExecutable returns the resolved path of the running binary.
func CurrentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("get executable path: %w", err)
	}

	// Resolve symlinks
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}

	return exe, nil
}

// RunningVersion returns the version of the executable at path: its file
// version resource where the platform has one, else the version stamped at
// build time. Nil means unknown.
func RunningVersion(path string) *Version {
	if v, ok := fileVersion(path); ok {
		return &v
	}
	if v, ok := ParseVersion(version.Version); ok {
		return &v
	}
	return nil
}

// IsPackaged reports whether exe is a released build rather than a
// development binary (`go run` or a build without a stamped version).
func IsPackaged(exe string) bool {
	if version.IsDev() {
		return false
	}
	return !strings.Contains(filepath.ToSlash(exe), "/go-build")
}
