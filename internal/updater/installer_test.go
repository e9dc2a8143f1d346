package updater

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type launch struct {
	path string
	args []string
}

// fakeLauncher records launches instead of starting processes.
type fakeLauncher struct {
	mu       sync.Mutex
	launches []launch
	fail     map[string]bool
}

func (f *fakeLauncher) Start(path string, args []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[path] {
		return fmt.Errorf("%w: refused %s", ErrSpawn, path)
	}
	f.launches = append(f.launches, launch{path: path, args: append([]string(nil), args...)})
	return nil
}

func (f *fakeLauncher) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, l := range f.launches {
		out = append(out, l.path)
	}
	return out
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.StateFile = filepath.Join(t.TempDir(), "autoupdate_state.json")
	cfg.RenameBudget = 50 * time.Millisecond
	cfg.RenameInterval = 10 * time.Millisecond
	cfg.DownloadTimeout = 5 * time.Second
	return cfg
}

func artifactServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestInstaller_Apply_Success(t *testing.T) {
	cfg := testConfig(t)
	server := artifactServer(t, []byte("new binary"))

	target := filepath.Join(t.TempDir(), "AdminDashboard.exe")
	require.NoError(t, os.WriteFile(target, []byte("old binary"), 0755))

	launcher := &fakeLauncher{}
	var statuses []string
	metrics := NewMetrics("")
	inst := NewInstaller(cfg, launcher,
		WithStatus(func(s string) { statuses = append(statuses, s) }),
		WithInstallerMetrics(metrics),
	)
	fixed := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	inst.now = func() time.Time { return fixed }

	task := UpdateTask{
		DownloadURL:      server.URL + "/AdminDashboard-1.2.0.exe",
		TargetPath:       target,
		RemoteIdentifier: "1.2.0.0",
		TaskID:           "task-1",
		Passthrough:      []string{"db", "list"},
	}
	require.NoError(t, inst.Apply(context.Background(), task))
	assert.Equal(t, PhaseDone, inst.Phase())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new binary", string(data))
	assert.False(t, fileExists(BackupPath(target)), "backup should be cleaned up")
	assert.False(t, fileExists(target+".download"))

	require.Len(t, launcher.launches, 1)
	assert.Equal(t, target, launcher.launches[0].path)
	assert.Equal(t, []string{"db", "list"}, launcher.launches[0].args)

	state, err := LoadState(cfg.StateFile)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0.0", state.RemoteID)
	assert.Equal(t, "1.2.0.0", state.RemoteVersion)
	assert.Equal(t, target, state.InstalledPath)
	assert.True(t, state.InstalledAt.Equal(fixed))

	assert.Contains(t, statuses, "Downloading update...")
	assert.Equal(t, 1.0, counterValue(t, metrics.InstallsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(len("new binary")), counterValue(t, metrics.DownloadedBytes))
}

func TestInstaller_Apply_FreshTarget(t *testing.T) {
	cfg := testConfig(t)
	server := artifactServer(t, []byte("new"))
	target := filepath.Join(t.TempDir(), "AdminDashboard.exe")

	launcher := &fakeLauncher{}
	inst := NewInstaller(cfg, launcher)
	require.NoError(t, inst.Apply(context.Background(), UpdateTask{DownloadURL: server.URL, TargetPath: target}))

	assert.True(t, fileExists(target))
	assert.Equal(t, []string{target}, launcher.paths())
}

func TestInstaller_Apply_DownloadFailureKeepsTarget(t *testing.T) {
	cfg := testConfig(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	target := filepath.Join(t.TempDir(), "AdminDashboard.exe")
	require.NoError(t, os.WriteFile(target, []byte("old binary"), 0755))

	launcher := &fakeLauncher{}
	var statuses []string
	inst := NewInstaller(cfg, launcher, WithStatus(func(s string) { statuses = append(statuses, s) }))

	err := inst.Apply(context.Background(), UpdateTask{DownloadURL: server.URL, TargetPath: target, Passthrough: []string{"x"}})
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, PhaseFailed, inst.Phase())

	data, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	assert.Equal(t, "old binary", string(data))
	assert.False(t, fileExists(target+".download"))

	require.Len(t, launcher.launches, 1)
	assert.Equal(t, target, launcher.launches[0].path)
	assert.Equal(t, []string{"x"}, launcher.launches[0].args)
	assert.Contains(t, statuses[len(statuses)-1], "Update failed")

	state, stateErr := LoadState(cfg.StateFile)
	require.NoError(t, stateErr)
	assert.Empty(t, state.Identifier(), "failed installs are not recorded")
}

func TestInstaller_Apply_MidDownloadFailureWithTargetAside(t *testing.T) {
	cfg := testConfig(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		w.Write([]byte("truncated"))
	}))
	defer server.Close()

	// A previous attempt was killed between the two renames.
	dir := t.TempDir()
	target := filepath.Join(dir, "AdminDashboard.exe")
	backup := BackupPath(target)
	require.NoError(t, os.WriteFile(backup, []byte("old binary"), 0755))

	launcher := &fakeLauncher{}
	inst := NewInstaller(cfg, launcher)

	err := inst.Apply(context.Background(), UpdateTask{DownloadURL: server.URL, TargetPath: target})
	assert.Equal(t, KindNetwork, KindOf(err))

	assert.False(t, fileExists(target))
	assert.True(t, fileExists(backup))
	assert.Equal(t, []string{backup}, launcher.paths())

	info, statErr := os.Stat(backup)
	require.NoError(t, statErr)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm()&0755)
}

func TestInstaller_Apply_BackupFailureLeavesTargetIntact(t *testing.T) {
	cfg := testConfig(t)
	server := artifactServer(t, []byte("new binary"))

	dir := t.TempDir()
	target := filepath.Join(dir, "AdminDashboard.exe")
	require.NoError(t, os.WriteFile(target, []byte("old binary"), 0755))
	// A non-empty directory at the backup path makes the rename fail everywhere.
	require.NoError(t, os.MkdirAll(filepath.Join(BackupPath(target), "occupied"), 0755))

	launcher := &fakeLauncher{}
	inst := NewInstaller(cfg, launcher)

	err := inst.Apply(context.Background(), UpdateTask{DownloadURL: server.URL, TargetPath: target})
	assert.Equal(t, KindFileSystem, KindOf(err))

	data, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	assert.Equal(t, "old binary", string(data))
	assert.False(t, fileExists(target+".download"))
	assert.Equal(t, []string{target}, launcher.paths())
}

func TestInstaller_Apply_LaunchFailureFallsBackToBackup(t *testing.T) {
	cfg := testConfig(t)
	server := artifactServer(t, []byte("new binary"))

	target := filepath.Join(t.TempDir(), "AdminDashboard.exe")
	require.NoError(t, os.WriteFile(target, []byte("old binary"), 0755))

	launcher := &fakeLauncher{fail: map[string]bool{target: true}}
	inst := NewInstaller(cfg, launcher)

	err := inst.Apply(context.Background(), UpdateTask{DownloadURL: server.URL, TargetPath: target, RemoteIdentifier: "1.2.0.0"})
	assert.Equal(t, KindSpawn, KindOf(err))
	assert.Equal(t, PhaseFailed, inst.Phase())

	assert.True(t, fileExists(BackupPath(target)), "backup is kept when the new build will not start")
	assert.Equal(t, []string{BackupPath(target)}, launcher.paths())
}

func TestInstaller_Apply_NothingToRelaunch(t *testing.T) {
	cfg := testConfig(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	launcher := &fakeLauncher{}
	inst := NewInstaller(cfg, launcher)

	err := inst.Apply(context.Background(), UpdateTask{DownloadURL: server.URL, TargetPath: filepath.Join(t.TempDir(), "gone.exe")})
	assert.Error(t, err)
	assert.Empty(t, launcher.paths())
}

func TestInstaller_ProgressStatus(t *testing.T) {
	var statuses []string
	var progress []Progress
	inst := NewInstaller(testConfig(t), &fakeLauncher{},
		WithStatus(func(s string) { statuses = append(statuses, s) }),
		WithProgress(func(p Progress) { progress = append(progress, p) }),
	)

	inst.onProgress(Progress{Downloaded: 512 * 1024, Total: 1024 * 1024})
	inst.onProgress(Progress{Downloaded: 3 * 1024 * 1024, Total: -1})

	assert.Len(t, progress, 2)
	assert.Equal(t, []string{
		"Downloading update... 0.5 / 1.0 MB (50%)",
		"Downloading update... 3.0 MB",
	}, statuses)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "preparing", PhasePreparing.String())
	assert.Equal(t, "downloading", PhaseDownloading.String())
	assert.Equal(t, "installing", PhaseInstalling.String())
	assert.Equal(t, "relaunching", PhaseRelaunching.String())
	assert.Equal(t, "done", PhaseDone.String())
	assert.Equal(t, "failed", PhaseFailed.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
