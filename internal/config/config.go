// Package config handles loading and saving application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. It holds host-level knobs
// only; engine settings (sorting, notifications, calendar sync) live inside
// the persisted task document itself.
type Config struct {
	Vault         VaultConfig        `yaml:"vault"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// VaultConfig locates the vault and the files the engine reads and writes.
type VaultConfig struct {
	// Dir is the vault root every relative path resolves against.
	Dir string `yaml:"dir,omitempty"`

	// DataFile is the task document path relative to the vault root.
	DataFile string `yaml:"data_file,omitempty"`
}

// NotificationConfig holds knobs for the background due-task scan.
type NotificationConfig struct {
	// Schedule is a cron spec for the scan cadence.
	Schedule string `yaml:"schedule,omitempty"`
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Vault: VaultConfig{
			DataFile: "checklist.json",
		},
		Notifications: NotificationConfig{
			Schedule: "@every 1m",
		},
	}
}

// ConfigDir returns the path to the configuration directory.
// Creates the directory if it doesn't exist.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "checklist")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration from the config file.
// If the file doesn't exist, returns a default configuration.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// VaultDir returns the configured vault root, falling back to the working
// directory.
func (c *Config) VaultDir() string {
	if c.Vault.Dir != "" {
		return c.Vault.Dir
	}
	return "."
}

// DataPath returns the absolute path of the task document.
func (c *Config) DataPath() string {
	file := c.Vault.DataFile
	if file == "" {
		file = "checklist.json"
	}
	return filepath.Join(c.VaultDir(), file)
}
