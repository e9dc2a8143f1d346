// Package logging configures the process-wide slog logger for the dashboard
// and its updater role.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config holds logging configuration.
type Config struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // json, text
	Output string `yaml:"output" json:"output"` // stdout, stderr, discard
	// File, when set, receives a copy of every record. The detached updater
	// has no console, so this is where its log ends up.
	File       string `yaml:"file,omitempty" json:"file,omitempty"`
	TimeFormat string `yaml:"time_format" json:"time_format"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		Output:     "stderr",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

var (
	defaultLogger  *slog.Logger
	loggerMu       sync.RWMutex
	currentLogFile *os.File
)

func init() {
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Close closes the current log file if one is open.
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if currentLogFile != nil {
		err := currentLogFile.Close()
		currentLogFile = nil
		return err
	}
	return nil
}

// Setup replaces the default logger according to cfg.
func Setup(cfg Config) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	output, err := getOutput(cfg.Output)
	if err != nil {
		return err
	}

	var logFile *os.File
	if cfg.File != "" {
		logFile, err = openLogFile(cfg.File)
		if err != nil {
			return err
		}
		if output == io.Discard {
			output = logFile
		} else {
			output = io.MultiWriter(output, logFile)
		}
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: timeFormatter(cfg.TimeFormat),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		if logFile != nil {
			logFile.Close()
		}
		return fmt.Errorf("unknown log format: %s", cfg.Format)
	}

	loggerMu.Lock()
	if currentLogFile != nil {
		currentLogFile.Close()
	}
	currentLogFile = logFile
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	loggerMu.Unlock()

	return nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

func getOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "stderr", "":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "discard", "none":
		return io.Discard, nil
	default:
		return nil, fmt.Errorf("unknown log output: %s (use file for log files)", output)
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// timeFormatter renders the record time with layout. An empty layout keeps
// the handler's default.
func timeFormatter(layout string) func([]string, slog.Attr) slog.Attr {
	if layout == "" {
		return nil
	}
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
			return slog.String(slog.TimeKey, a.Value.Time().Format(layout))
		}
		return a
	}
}

// Default returns the default logger.
func Default() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// WithComponent returns the default logger tagged with component, e.g.
// "updater", "sanctions" or "game".
func WithComponent(component string) *slog.Logger {
	return Default().With("component", component)
}

// Debug logs at debug level on the default logger.
func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}
