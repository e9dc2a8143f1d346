// Package config loads the dashboard's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configurations that can check themselves.
type Validator interface {
	Validate() error
}

// Load parses the YAML file at path into v. ${VAR} references are expanded
// from the environment first, so secrets and paths can come from outside.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), v); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// LoadAndValidate is Load followed by v.Validate when v is a Validator.
func LoadAndValidate(path string, v any) error {
	if err := Load(path, v); err != nil {
		return err
	}
	return validate(v)
}

// LoadOrDefault loads path over the defaults already in v. A missing file
// leaves v untouched.
func LoadOrDefault(path string, v any) error {
	err := LoadAndValidate(path, v)
	if errors.Is(err, os.ErrNotExist) {
		return validate(v)
	}
	return err
}

func validate(v any) error {
	if val, ok := v.(Validator); ok {
		return val.Validate()
	}
	return nil
}

// Save marshals v to path, creating parent directories.
func Save(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil { //nolint:gosec // G301: Config directory permissions are appropriate
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	// The file may name database and feed locations; keep it private.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Backup copies path to path.backup.<timestamp> and returns the copy's path.
func Backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read config: %w", err)
	}

	backupPath := path + ".backup." + time.Now().Format("20060102-150405")
	if err := os.WriteFile(backupPath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return backupPath, nil
}
