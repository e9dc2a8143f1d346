package updater

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// AppDirName is the per-user application data directory name.
const AppDirName = "Chiv2AdminDashboard"

// InstalledState records the last successfully installed artifact.
type InstalledState struct {
	// RemoteVersion predates RemoteID; both hold the same identifier.
	RemoteVersion string    `json:"installed_remote_version,omitempty"`
	RemoteID      string    `json:"installed_remote_id,omitempty"`
	InstalledAt   time.Time `json:"installed_at,omitempty"`
	InstalledPath string    `json:"installed_path,omitempty"`
}

// Identifier returns the installed artifact's identity, or "" if nothing
// has been installed yet.
func (s InstalledState) Identifier() string {
	if s.RemoteID != "" {
		return s.RemoteID
	}
	return s.RemoteVersion
}

// LoadState reads the state at path. A missing or unreadable file yields
// the zero state, meaning nothing is installed yet.
func LoadState(path string) (InstalledState, error) {
	var s InstalledState

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("%w: read state: %v", ErrFileSystem, err)
	}

	if err := json.Unmarshal(data, &s); err != nil {
		// Corrupted file, start fresh
		return InstalledState{}, nil
	}

	return s, nil
}

// SaveState overwrites the state at path. The write goes through a temp
// file and a rename so a reader never sees a half-written record.
func SaveState(path string, s InstalledState) error {
	s.InstalledAt = s.InstalledAt.UTC().Truncate(time.Second)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode state: %v", ErrFileSystem, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrFileSystem, err)
	}

	tmp, err := os.CreateTemp(dir, ".autoupdate_state-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileSystem, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write state: %v", ErrFileSystem, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close state: %v", ErrFileSystem, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace state: %v", ErrFileSystem, err)
	}
	return nil
}

// AppDataDir returns the per-user directory for dashboard data.
// Windows: %LOCALAPPDATA%/Chiv2AdminDashboard
// Linux: $XDG_STATE_HOME/Chiv2AdminDashboard or ~/.local/state/Chiv2AdminDashboard
// Falls back to the temp directory when no home is known.
func AppDataDir() string {
	var base string

	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, "Library", "Application Support")
		}
	default: // Linux and others
		base = os.Getenv("XDG_STATE_HOME")
		if base == "" {
			if home, err := os.UserHomeDir(); err == nil {
				base = filepath.Join(home, ".local", "state")
			}
		}
	}

	if base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, AppDirName)
}

// DefaultStatePath returns the default state file path.
func DefaultStatePath() string {
	return filepath.Join(AppDataDir(), "autoupdate_state.json")
}
