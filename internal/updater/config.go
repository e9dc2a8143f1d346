package updater

import (
	"fmt"
	"time"
)

const (
	// DefaultFeedURL lists every release of the dashboard repository.
	DefaultFeedURL = "https://api.github.com/repos/Lionkjgame1219/Chiv2AdminDashboard/releases?per_page=100"

	// UserAgent identifies the updater to the release feed.
	UserAgent = "Chiv2AdminDashboard-Autoupdater"
)

// Config holds updater configuration.
type Config struct {
	// Enabled turns the startup update check on.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// FeedURL is the release list endpoint.
	FeedURL string `yaml:"feed_url" json:"feed_url"`

	// AssetSuffix is the file suffix of installable artifacts.
	AssetSuffix string `yaml:"asset_suffix" json:"asset_suffix"`

	// ProductKeywords mark artifacts that belong to this product when the
	// running file name does not match anything.
	ProductKeywords []string `yaml:"product_keywords" json:"product_keywords"`

	// StateFile is the path to the installed-state record.
	StateFile string `yaml:"state_file" json:"state_file"`

	CatalogTimeout  time.Duration `yaml:"catalog_timeout" json:"catalog_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`

	// RenameBudget bounds how long a locked target is retried.
	RenameBudget   time.Duration `yaml:"rename_budget" json:"rename_budget"`
	RenameInterval time.Duration `yaml:"rename_interval" json:"rename_interval"`

	// MetricsFile, when set, receives a Prometheus text-format snapshot
	// after every check and install.
	MetricsFile string `yaml:"metrics_file,omitempty" json:"metrics_file,omitempty"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		FeedURL:         DefaultFeedURL,
		AssetSuffix:     ".exe",
		ProductKeywords: []string{"admindashboard", "dashboard"},
		StateFile:       DefaultStatePath(),
		CatalogTimeout:  5 * time.Second,
		DownloadTimeout: 300 * time.Second,
		RenameBudget:    60 * time.Second,
		RenameInterval:  500 * time.Millisecond,
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.FeedURL == "" {
		return fmt.Errorf("update.feed_url is required")
	}
	if c.AssetSuffix == "" {
		return fmt.Errorf("update.asset_suffix is required")
	}
	if c.CatalogTimeout <= 0 || c.DownloadTimeout <= 0 {
		return fmt.Errorf("update timeouts must be positive")
	}
	if c.RenameBudget < 0 || c.RenameInterval <= 0 {
		return fmt.Errorf("update rename budget must be >= 0 and interval > 0")
	}
	return nil
}

func (c Config) statePath() string {
	if c.StateFile == "" {
		return DefaultStatePath()
	}
	return c.StateFile
}
