// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// gradebook client.
//
// Configuration lives in ~/.gradebook/config.toml with sensible
// defaults, GRADEBOOK_* environment variable overrides, and validation.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete gradebook client configuration.
type Config struct {
	Version string `toml:"version"`

	// API (backend) configuration
	API APIConfig `toml:"api"`

	// Session persistence configuration
	Session SessionConfig `toml:"session"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// APIConfig contains the backend connection configuration.
type APIConfig struct {
	// BaseURL is the gradebook backend URL (default: http://localhost:8000)
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds (default: 30)
	TimeoutSecs int `toml:"timeout_secs"`
	// RateLimit is the maximum outgoing requests per second (default: 10)
	RateLimit float64 `toml:"rate_limit"`
}

// SessionConfig controls how the authenticated session is persisted.
type SessionConfig struct {
	// Dir overrides the session storage directory (default: ~/.gradebook)
	Dir string `toml:"dir"`
	// EncryptToken encrypts the bearer token at rest (default: true)
	EncryptToken bool `toml:"encrypt_token"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Theme is "auto", "dark" or "light" (default: auto)
	Theme string `toml:"theme"`
	// ShowTestAccounts shows the demo-account shortcuts on the login
	// screen (default: true; disable for real deployments)
	ShowTestAccounts bool `toml:"show_test_accounts"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultBaseURL is the well-known local backend endpoint.
const DefaultBaseURL = "http://localhost:8000"

// Default returns a configuration with all default values.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			TimeoutSecs: 30,
			RateLimit:   10,
		},
		Session: SessionConfig{
			EncryptToken: true,
		},
		UI: UIConfig{
			Theme:            "auto",
			ShowTestAccounts: true,
		},
	}
}

// fillDefaults fills zero values after a partial file load.
func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = def.API.BaseURL
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = def.API.TimeoutSecs
	}
	if cfg.API.RateLimit == 0 {
		cfg.API.RateLimit = def.API.RateLimit
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = def.UI.Theme
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the gradebook configuration directory (~/.gradebook).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".gradebook"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists with owner-only
// permissions. The directory also holds the persisted session token.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions fixes permissions on the config file.
// The file can carry a custom backend URL with embedded credentials, so
// it must stay owner read/write only.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the config file, falling back to
// defaults when the file is missing. Environment overrides are applied
// last, then the result is validated.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadFile(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile loads configuration from a TOML file into cfg.
func LoadFile(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all filesystems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// Save writes the configuration to the default config path.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(cfg, path)
}

// SaveFile writes the configuration as TOML to the given path.
func SaveFile(cfg *Config, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies GRADEBOOK_* environment variables on top of
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("GRADEBOOK_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if theme := os.Getenv("GRADEBOOK_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if dir := os.Getenv("GRADEBOOK_DIR"); dir != "" {
		c.Session.Dir = dir
	}
	if v := os.Getenv("GRADEBOOK_PLAINTEXT_TOKEN"); v != "" {
		c.Session.EncryptToken = !(v == "1" || strings.EqualFold(v, "true"))
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{"api.base_url", "must be an absolute http(s) URL"})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{"api.base_url", "scheme must be http or https"})
	}

	if c.API.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{"api.timeout_secs", "must not be negative"})
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, ValidationError{"api.rate_limit", "must not be negative"})
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{"ui.theme", "must be auto, dark or light"})
	}

	return errors.Join(errs...)
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation
// (e.g., "api.base_url"). Used by the `gradebook config` subcommand.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api.base_url":
		return c.API.BaseURL, nil
	case "api.timeout_secs":
		return fmt.Sprintf("%d", c.API.TimeoutSecs), nil
	case "api.rate_limit":
		return fmt.Sprintf("%g", c.API.RateLimit), nil
	case "session.dir":
		return c.Session.Dir, nil
	case "session.encrypt_token":
		return fmt.Sprintf("%t", c.Session.EncryptToken), nil
	case "ui.theme":
		return c.UI.Theme, nil
	case "ui.show_test_accounts":
		return fmt.Sprintf("%t", c.UI.ShowTestAccounts), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Set updates a configuration value using dot notation and validates
// the result.
func (c *Config) Set(key, value string) error {
	switch key {
	case "api.base_url":
		c.API.BaseURL = value
	case "api.timeout_secs":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
			return fmt.Errorf("invalid integer: %q", value)
		}
		c.API.TimeoutSecs = n
	case "api.rate_limit":
		var f float64
		if _, err := fmt.Sscanf(value, "%g", &f); err != nil {
			return fmt.Errorf("invalid number: %q", value)
		}
		c.API.RateLimit = f
	case "session.dir":
		c.Session.Dir = value
	case "session.encrypt_token":
		c.Session.EncryptToken = value == "1" || strings.EqualFold(value, "true")
	case "ui.theme":
		c.UI.Theme = value
	case "ui.show_test_accounts":
		c.UI.ShowTestAccounts = value == "1" || strings.EqualFold(value, "true")
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return c.Validate()
}

// Keys returns all settable configuration keys.
func Keys() []string {
	return []string{
		"api.base_url",
		"api.timeout_secs",
		"api.rate_limit",
		"session.dir",
		"session.encrypt_token",
		"ui.theme",
		"ui.show_test_accounts",
	}
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalConfig     *Config
	globalConfigMu   sync.RWMutex
	globalConfigOnce sync.Once
)

// Global returns the global configuration, loading it on first use.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between tests.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
