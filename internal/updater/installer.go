package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/logging"
)

// Phase is a step of the install state machine.
type Phase int

const (
	PhasePreparing Phase = iota
	PhaseDownloading
	PhaseInstalling
	PhaseRelaunching
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePreparing:
		return "preparing"
	case PhaseDownloading:
		return "downloading"
	case PhaseInstalling:
		return "installing"
	case PhaseRelaunching:
		return "relaunching"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BackupPath returns where the previous executable is kept during an install.
func BackupPath(target string) string {
	return target + ".old"
}

// Installer applies an UpdateTask: download, swap the executable, record
// the installed state, relaunch. On any failure it relaunches whatever
// executable is left so the user keeps a running application.
type Installer struct {
	downloader     *Downloader
	launcher       Launcher
	statePath      string
	renameBudget   time.Duration
	renameInterval time.Duration
	status         StatusFunc
	progress       ProgressFunc
	metrics        *Metrics
	now            func() time.Time

	mu    sync.Mutex
	phase Phase
}

// InstallerOption configures an Installer during construction.
type InstallerOption func(*Installer)

// WithStatus sets the status line callback.
func WithStatus(fn StatusFunc) InstallerOption {
	return func(i *Installer) { i.status = fn }
}

// WithProgress sets the download progress callback.
func WithProgress(fn ProgressFunc) InstallerOption {
	return func(i *Installer) { i.progress = fn }
}

// WithInstallerMetrics records install outcomes and downloaded bytes.
func WithInstallerMetrics(m *Metrics) InstallerOption {
	return func(i *Installer) {
		i.metrics = m
		i.downloader.metrics = m
	}
}

// NewInstaller creates an Installer from the updater configuration.
func NewInstaller(cfg Config, launcher Launcher, opts ...InstallerOption) *Installer {
	i := &Installer{
		downloader:     NewDownloader(cfg.DownloadTimeout),
		launcher:       launcher,
		statePath:      cfg.statePath(),
		renameBudget:   cfg.RenameBudget,
		renameInterval: cfg.RenameInterval,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Phase returns the current phase.
func (i *Installer) Phase() Phase {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.phase
}

func (i *Installer) setPhase(p Phase) {
	i.mu.Lock()
	i.phase = p
	i.mu.Unlock()
}

func (i *Installer) report(msg string) {
	if i.status != nil {
		i.status(msg)
	}
}

// Apply runs the task to completion. The returned error describes why the
// update was not applied; the fallback relaunch has already happened by then.
func (i *Installer) Apply(ctx context.Context, task UpdateTask) error {
	ctx = logging.WithContext(ctx, logging.WithComponent("updater"))
	ctx = logging.ContextWith(ctx, "task_id", task.TaskID, "target", task.TargetPath)
	log := logging.FromContext(ctx)
	backup := BackupPath(task.TargetPath)

	if err := i.install(ctx, task, backup, log); err != nil {
		i.setPhase(PhaseFailed)
		i.metrics.observeInstall(KindOf(err).String())
		i.metrics.Flush()

		log.Error("Apply-update failed", "error", err)
		i.report(fmt.Sprintf("Update failed: %v\nRelaunching previous version...", err))
		i.relaunchExisting(task.Passthrough, log, task.TargetPath, backup)
		return err
	}

	i.setPhase(PhaseRelaunching)
	i.report("Launching updated version...")
	if err := i.launcher.Start(task.TargetPath, task.Passthrough); err != nil {
		// The new binary is in place but will not start; keep the backup
		// and hand the session back to it.
		i.setPhase(PhaseFailed)
		i.metrics.observeInstall(KindOf(err).String())
		i.metrics.Flush()

		log.Error("Failed to launch updated version", "error", err)
		i.report(fmt.Sprintf("Update failed: %v\nRelaunching previous version...", err))
		i.relaunchExisting(task.Passthrough, log, backup)
		return err
	}

	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		log.Debug("Could not remove backup", "path", backup, "error", err)
	}

	i.setPhase(PhaseDone)
	i.metrics.observeInstall("success")
	i.metrics.Flush()
	log.Info("Update installed", "remote_id", task.RemoteIdentifier)
	return nil
}

func (i *Installer) install(ctx context.Context, task UpdateTask, backup string, log *slog.Logger) error {
	i.setPhase(PhasePreparing)
	i.report("Preparing update...")

	// Download next to the target so the final rename stays on one filesystem.
	dlPath := task.TargetPath + ".download"

	i.setPhase(PhaseDownloading)
	i.report("Downloading update...")
	log.Info("Downloading update", "url", task.DownloadURL)
	if err := i.downloader.Download(ctx, task.DownloadURL, dlPath, i.onProgress); err != nil {
		return err
	}

	if err := prepareExecutable(dlPath); err != nil {
		os.Remove(dlPath)
		return err
	}

	i.setPhase(PhaseInstalling)
	i.report("Installing update...")

	if fileExists(task.TargetPath) {
		if err := renameWithRetry(task.TargetPath, backup, i.renameBudget, i.renameInterval); err != nil {
			// Without a backup the swap cannot be undone; leave the target as it is.
			os.Remove(dlPath)
			return fmt.Errorf("back up current executable: %w", err)
		}
	}

	if err := renameWithRetry(dlPath, task.TargetPath, i.renameBudget, i.renameInterval); err != nil {
		os.Remove(dlPath)
		if fileExists(backup) && !fileExists(task.TargetPath) {
			if restoreErr := os.Rename(backup, task.TargetPath); restoreErr != nil {
				log.Warn("Restore from backup failed", "error", restoreErr)
			}
		}
		return fmt.Errorf("move new executable into place: %w", err)
	}

	state := InstalledState{
		RemoteVersion: task.RemoteIdentifier,
		RemoteID:      task.RemoteIdentifier,
		InstalledAt:   i.now(),
		InstalledPath: task.TargetPath,
	}
	if err := SaveState(i.statePath, state); err != nil {
		// The new binary is already in place; a missing record only costs
		// one extra comparison on the next start.
		log.Warn("Failed to save installed state", "path", i.statePath, "error", err)
	}
	return nil
}

func (i *Installer) onProgress(p Progress) {
	if i.progress != nil {
		i.progress(p)
	}

	const mb = 1024 * 1024
	if pct, ok := p.Percent(); ok {
		i.report(fmt.Sprintf("Downloading update... %.1f / %.1f MB (%d%%)",
			float64(p.Downloaded)/mb, float64(p.Total)/mb, pct))
	} else {
		i.report(fmt.Sprintf("Downloading update... %.1f MB", float64(p.Downloaded)/mb))
	}
}

// relaunchExisting starts the first candidate that exists. Failures are
// logged and otherwise ignored: there is nothing left to fall back to.
func (i *Installer) relaunchExisting(args []string, log *slog.Logger, candidates ...string) {
	for _, path := range candidates {
		if !fileExists(path) {
			continue
		}
		if err := i.launcher.Start(path, args); err != nil {
			log.Warn("Fallback relaunch failed", "path", path, "error", err)
			continue
		}
		log.Info("Relaunched previous version", "path", path)
		return
	}
}
