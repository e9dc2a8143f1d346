package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/app"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/game"
	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/updater"
)

type recordingDriver struct {
	commands []string
	fail     bool
}

func (d *recordingDriver) OpenConsole() error { return nil }

func (d *recordingDriver) SendCommand(text string) bool {
	d.commands = append(d.commands, text)
	return !d.fail
}

type testEnv struct {
	dir        string
	configPath string
	statePath  string
	driver     *recordingDriver
}

func newTestEnv(t *testing.T, feedURL string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	te := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		statePath:  filepath.Join(dir, "autoupdate_state.json"),
		driver:     &recordingDriver{},
	}
	if feedURL == "" {
		feedURL = "http://127.0.0.1:1/releases"
	}

	cfg := fmt.Sprintf(`logging:
  output: discard
update:
  feed_url: %q
  state_file: %q
database:
  path: %q
game:
  list_players_delay: 0s
  presets:
    - "Teamkilling"
    - ""
    - "Cheating"
`, feedURL, te.statePath, filepath.Join(dir, "sanctions.db"))
	require.NoError(t, os.WriteFile(te.configPath, []byte(cfg), 0600))
	return te
}

// exec runs the command tree with args and returns its output.
func (te *testEnv) exec(args ...string) (string, error) {
	root := NewRootCommand(app.WithDriverFactory(func(game.Config) (game.Driver, error) {
		return te.driver, nil
	}))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", te.configPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "dashboard", root.Use)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup(updater.FlagSkipUpdate))
}

func TestNewRootCommand_SubcommandStructure(t *testing.T) {
	root := NewRootCommand()

	find := func(parent *cobra.Command, name string) *cobra.Command {
		for _, c := range parent.Commands() {
			if c.Name() == name {
				return c
			}
		}
		return nil
	}

	for _, name := range []string{"version", "config", "update", "db", "game"} {
		assert.NotNil(t, find(root, name), "%s command should exist", name)
	}

	db := find(root, "db")
	require.NotNil(t, db)
	for _, name := range []string{
		"list", "search", "view", "revoke", "stats", "player-report",
		"players", "player", "note",
		"redflag-list", "redflag-view", "redflag-player", "redflag-add", "redflag-resolve", "redflag-delete",
	} {
		assert.NotNil(t, find(db, name), "db %s command should exist", name)
	}

	g := find(root, "game")
	require.NotNil(t, g)
	for _, name := range []string{"ban", "unban", "kick", "say", "serversay", "addtime", "listplayers", "presets"} {
		assert.NotNil(t, find(g, name), "game %s command should exist", name)
	}

	cfg := find(root, "config")
	require.NotNil(t, cfg)
	assert.Len(t, cfg.Commands(), 4)
}

func TestVersionCommand(t *testing.T) {
	te := newTestEnv(t, "")

	out, err := te.exec("version")
	require.NoError(t, err)
	assert.Contains(t, out, "Chivalry 2 Admin Dashboard")

	out, err = te.exec("version", "--json")
	require.NoError(t, err)
	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "Chivalry 2 Admin Dashboard", info["name"])
	assert.Contains(t, info, "dev")
}

func TestSkipUpdateFlagAccepted(t *testing.T) {
	te := newTestEnv(t, "")

	_, err := te.exec("--skip-update", "version")
	assert.NoError(t, err)
}

func TestConfigInit(t *testing.T) {
	te := newTestEnv(t, "")
	path := filepath.Join(te.dir, "new", "config.yaml")

	out, err := te.exec("config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote configuration to "+path)
	assert.NotContains(t, out, "Backed up")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "feed_url:")

	out, err = te.exec("config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up existing configuration")
}

func TestConfigShow(t *testing.T) {
	te := newTestEnv(t, "")

	out, err := te.exec("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# "+te.configPath)
	assert.Contains(t, out, "list_players_delay: 0s")
	assert.Contains(t, out, "Teamkilling")
}

func TestConfigPath(t *testing.T) {
	te := newTestEnv(t, "")

	out, err := te.exec("config", "path")
	require.NoError(t, err)
	assert.Equal(t, te.configPath, strings.TrimSpace(out))
}

func TestConfigValidate(t *testing.T) {
	te := newTestEnv(t, "")

	out, err := te.exec("config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	require.NoError(t, os.WriteFile(te.configPath, []byte("game:\n  console_key: \"ab\"\n"), 0600))
	_, err = te.exec("config", "validate")
	assert.Error(t, err)

	// Unlike the other commands, validate requires the file to exist.
	_, err = te.exec("--config", filepath.Join(te.dir, "missing.yaml"), "config", "validate")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	te := newTestEnv(t, "")
	require.NoError(t, os.WriteFile(te.configPath, []byte("database:\n  path: \"\"\n"), 0600))

	_, err := te.exec("db", "stats")
	assert.Error(t, err)
}

func feed(t *testing.T, tag, asset string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]updater.Release{{
			TagName: tag,
			Assets: []updater.Asset{{
				Name:               asset,
				BrowserDownloadURL: srv.URL + "/download/" + asset,
				UpdatedAt:          "2026-01-01T00:00:00Z",
			}},
		}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUpdateCheck(t *testing.T) {
	srv := feed(t, "v1.2.0", "AdminDashboard-1.2.0.exe")
	te := newTestEnv(t, srv.URL+"/releases")
	target := filepath.Join(te.dir, "AdminDashboard-1.0.0.exe")

	out, err := te.exec("update", "check", "--target", target)
	require.NoError(t, err)
	assert.Contains(t, out, "AdminDashboard-1.2.0.exe (v1.2.0)")
	assert.Contains(t, out, "Remote version: 1.2.0.0")
	assert.Contains(t, out, "Update available")

	require.NoError(t, updater.SaveState(te.statePath, updater.InstalledState{
		RemoteVersion: "1.2.0.0",
		RemoteID:      "1.2.0.0",
		InstalledPath: target,
	}))

	out, err = te.exec("update", "check", "--target", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Up to date.")
}

func TestUpdateCheck_NoCandidate(t *testing.T) {
	srv := feed(t, "v1.2.0", "AdminDashboard-1.2.0.zip")
	te := newTestEnv(t, srv.URL+"/releases")

	out, err := te.exec("update", "check", "--target", filepath.Join(te.dir, "AdminDashboard.exe"))
	require.NoError(t, err)
	assert.Contains(t, out, "No installable release found.")
}

func TestUpdateCheck_FeedDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	te := newTestEnv(t, srv.URL)

	_, err := te.exec("update", "check", "--target", filepath.Join(te.dir, "AdminDashboard.exe"))
	assert.Error(t, err)
}
