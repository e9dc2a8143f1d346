package updater

import (
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Lionkjgame1219/Chiv2AdminDashboard/internal/logging"
)

// Metrics holds the updater's Prometheus metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	ChecksTotal     *prometheus.CounterVec
	InstallsTotal   *prometheus.CounterVec
	DownloadedBytes prometheus.Counter
	LastCheck       prometheus.Gauge

	registry *prometheus.Registry
	textfile string
}

// NewMetrics creates a Metrics instance with all metrics registered.
// When textfile is non-empty, Flush writes a snapshot there.
func NewMetrics(textfile string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		textfile: textfile,
	}

	m.ChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_update_checks_total",
			Help: "Update checks by outcome",
		},
		[]string{"result"},
	)

	m.InstallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_update_installs_total",
			Help: "Installer runs by outcome",
		},
		[]string{"result"},
	)

	m.DownloadedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_update_downloaded_bytes_total",
			Help: "Bytes of artifact downloaded",
		},
	)

	m.LastCheck = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_update_last_check_timestamp_seconds",
			Help: "Unix time of the last update check",
		},
	)

	m.registry.MustRegister(
		m.ChecksTotal,
		m.InstallsTotal,
		m.DownloadedBytes,
		m.LastCheck,
	)

	return m
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) observeCheck(result string) {
	if m == nil {
		return
	}
	m.ChecksTotal.WithLabelValues(result).Inc()
	m.LastCheck.SetToCurrentTime()
}

func (m *Metrics) observeInstall(result string) {
	if m == nil {
		return
	}
	m.InstallsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) addDownloaded(n int) {
	if m == nil {
		return
	}
	m.DownloadedBytes.Add(float64(n))
}

// RoleTextfile returns the textfile path for role. Each process keeps its
// own registry, so the updater writes next to the main file instead of over
// it: "update.prom" becomes "update.updater.prom".
func RoleTextfile(path string, role Role) string {
	if path == "" || role == RoleMain {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".updater" + ext
}

// Flush writes the text-format snapshot when a textfile is configured.
func (m *Metrics) Flush() {
	if m == nil || m.textfile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(m.textfile, m.registry); err != nil {
		logging.Debug("Failed to write update metrics", "path", m.textfile, "error", err)
	}
}
