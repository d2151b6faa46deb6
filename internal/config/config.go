// Package config handles user configuration for llamactl.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Environment overrides, mirroring the runner's own variables so a single
// export configures both sides of the bridge.
const (
	EnvPython   = "PYOLLAMA_PYTHON"
	EnvModelDir = "PYOLLAMA_MODEL_DIR"
)

// Config represents the user configuration
type Config struct {
	// PythonPath is the interpreter used to invoke the runner module.
	// A bare name is resolved through PATH.
	PythonPath string `json:"python_path"`
	// ModelDir is passed to the runner as --model-dir on every call.
	ModelDir string `json:"model_dir"`
	// DefaultModel is used when no model is given on the command line.
	// Empty means the user is always asked.
	DefaultModel string `json:"default_model"`
	// RequestTimeout is the per-call deadline in seconds for runner
	// invocations. 0 disables the deadline entirely.
	RequestTimeout int `json:"request_timeout"`
	// Verbose enables debug logging of executed commands and runner
	// stderr diagnostics.
	Verbose         bool   `json:"verbose"`
	CopyToClipboard bool   `json:"copy_to_clipboard"`
	MarkdownStyle   string `json:"markdown_style,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		PythonPath:     "python3",
		ModelDir:       filepath.Join(homeDir, ".pyollama", "models"),
		DefaultModel:   "",
		RequestTimeout: 300,
		Verbose:        false,
		MarkdownStyle:  "dark",
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".llamactl"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk, applying environment
// overrides on top. Called once per gateway invocation, so edits take
// effect on the next call without a restart.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return applyEnv(cfg), err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil // Use defaults if config doesn't exist
		}
		return applyEnv(cfg), fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(DefaultConfig()), fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyEnv(cfg), nil
}

// applyEnv overlays environment variables over cfg.
func applyEnv(cfg Config) Config {
	if python := os.Getenv(EnvPython); python != "" {
		cfg.PythonPath = python
	}
	if dir := os.Getenv(EnvModelDir); dir != "" {
		cfg.ModelDir = dir
	}
	return cfg
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
