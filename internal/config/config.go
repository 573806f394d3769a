// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// qna-tui.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/qna-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete qna-tui configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// API configuration (board backend)
	API APIConfig `toml:"api" json:"api"`

	// Session lifecycle configuration
	Session SessionConfig `toml:"session" json:"session"`

	// Storage configuration (local state + offline cache)
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// APIConfig contains board backend connection configuration.
type APIConfig struct {
	// BaseURL is the backend API base URL, including any path prefix.
	BaseURL string `toml:"base_url" json:"base_url"`
}

// SessionConfig contains the idle-session timing policy.
//
// Invariant: WarningLeadSecs < IdleTimeoutSecs. Validation clamps rather than
// fails so a bad config file cannot lock the user out of the client.
type SessionConfig struct {
	// IdleTimeoutSecs is how long without activity before the session is
	// considered expired client-side. Default: 1800 (30 minutes).
	IdleTimeoutSecs int `toml:"idle_timeout_secs" json:"idle_timeout_secs"`

	// WarningLeadSecs is how long before expiry the warning dialog appears.
	// Default: 300 (5 minutes).
	WarningLeadSecs int `toml:"warning_lead_secs" json:"warning_lead_secs"`

	// CheckIntervalSecs is the local expiry polling interval. Worst-case
	// detection latency equals this interval. Default: 60.
	CheckIntervalSecs int `toml:"check_interval_secs" json:"check_interval_secs"`

	// ValidationIntervalSecs is how often the server is asked whether the
	// session credential is still honored. Default: 300 (5 minutes).
	ValidationIntervalSecs int `toml:"validation_interval_secs" json:"validation_interval_secs"`
}

// StorageConfig contains local persistence configuration.
type StorageConfig struct {
	// Dir overrides the state directory (default ~/.qna).
	Dir string `toml:"dir" json:"dir"`

	// SealState encrypts the persisted session record at rest.
	SealState bool `toml:"seal_state" json:"seal_state"`

	// CacheEnabled controls the offline question cache.
	CacheEnabled bool `toml:"cache_enabled" json:"cache_enabled"`

	// CacheTTLHours is the staleness bound for cached board data.
	CacheTTLHours int `toml:"cache_ttl_hours" json:"cache_ttl_hours"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// CompactMode uses a more compact board layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		API: APIConfig{
			BaseURL: "http://localhost:3001/api",
		},

		Session: SessionConfig{
			IdleTimeoutSecs:        1800, // 30 minutes
			WarningLeadSecs:        300,  // warn 5 minutes before expiry
			CheckIntervalSecs:      60,
			ValidationIntervalSecs: 300,
		},

		Storage: StorageConfig{
			SealState:     false,
			CacheEnabled:  true,
			CacheTTLHours: 24,
		},

		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
		},
	}
}

// =============================================================================
// DURATION ACCESSORS
// =============================================================================

// IdleTimeout returns the idle timeout as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutSecs) * time.Second
}

// WarningLead returns the warning lead as a duration.
func (c *Config) WarningLead() time.Duration {
	return time.Duration(c.Session.WarningLeadSecs) * time.Second
}

// CheckInterval returns the local expiry polling interval.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Session.CheckIntervalSecs) * time.Second
}

// ValidationInterval returns the server revalidation interval.
func (c *Config) ValidationInterval() time.Duration {
	return time.Duration(c.Session.ValidationIntervalSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the qna configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".qna"), nil
}

// PathTOML returns the path to the TOML config file.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// PathJSON returns the path to the JSON config file.
func PathJSON() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// StateDir returns the directory holding persisted session state and the
// offline cache, honoring the storage.dir override.
func (c *Config) StateDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return Dir()
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last, then validation clamps.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := PathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
				return nil, fmt.Errorf("failed to load TOML config: %w", err)
			}
			return finish(cfg)
		}
	}

	jsonPath, err := PathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			data, err := os.ReadFile(jsonPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read JSON config: %w", err)
			}
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode JSON config: %w", err)
			}
			return finish(cfg)
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON config from %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode JSON config from %s: %w", path, err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// finish applies env overrides, defaults, and validation in load order.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := PathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# qna configuration file\n")
	sb.WriteString("# Generated by qna - edit with care\n\n")

	encoder := toml.NewEncoder(&sb)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - QNA_API_URL: overrides api.base_url
//   - QNA_SESSION_TIMEOUT: idle timeout in milliseconds
//   - QNA_SESSION_WARNING_TIME: warning lead in milliseconds
//   - QNA_SESSION_CHECK_INTERVAL: local check interval in milliseconds
//   - QNA_SESSION_VALIDATION_INTERVAL: revalidation interval in milliseconds
//   - QNA_STATE_DIR: overrides storage.dir
//   - QNA_THEME: overrides ui.theme
//
// The session variables take milliseconds because that is the unit the board
// backend's own deployment configuration uses for the same values.
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("QNA_API_URL"); u != "" {
		c.API.BaseURL = u
	}

	if ms, ok := envMillis("QNA_SESSION_TIMEOUT"); ok {
		c.Session.IdleTimeoutSecs = int(ms / 1000)
	}
	if ms, ok := envMillis("QNA_SESSION_WARNING_TIME"); ok {
		c.Session.WarningLeadSecs = int(ms / 1000)
	}
	if ms, ok := envMillis("QNA_SESSION_CHECK_INTERVAL"); ok {
		c.Session.CheckIntervalSecs = int(ms / 1000)
	}
	if ms, ok := envMillis("QNA_SESSION_VALIDATION_INTERVAL"); ok {
		c.Session.ValidationIntervalSecs = int(ms / 1000)
	}

	if dir := os.Getenv("QNA_STATE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if theme := os.Getenv("QNA_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// envMillis reads a millisecond-valued environment variable.
func envMillis(name string) (int64, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ms <= 0 {
		return 0, false
	}
	return ms, true
}

// =============================================================================
// DEFAULTS & VALIDATION
// =============================================================================

// SetDefaults fills in any missing values with defaults and clamps the
// session policy into a sane range.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}

	// Session timing: zero means unset, fall back to defaults.
	if c.Session.IdleTimeoutSecs <= 0 {
		c.Session.IdleTimeoutSecs = defaults.Session.IdleTimeoutSecs
	}
	if c.Session.WarningLeadSecs <= 0 {
		c.Session.WarningLeadSecs = defaults.Session.WarningLeadSecs
	}
	if c.Session.CheckIntervalSecs <= 0 {
		c.Session.CheckIntervalSecs = defaults.Session.CheckIntervalSecs
	}
	if c.Session.ValidationIntervalSecs <= 0 {
		c.Session.ValidationIntervalSecs = defaults.Session.ValidationIntervalSecs
	}

	// Clamp: the warning lead must fit inside the idle timeout, otherwise
	// the warning state would be unreachable or permanently on. A broken
	// value is clamped rather than fatal so a bad config file cannot make
	// the client unusable.
	if c.Session.WarningLeadSecs >= c.Session.IdleTimeoutSecs {
		c.Session.WarningLeadSecs = c.Session.IdleTimeoutSecs / 2
	}

	if c.Storage.CacheTTLHours <= 0 {
		c.Storage.CacheTTLHours = defaults.Storage.CacheTTLHours
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, err := url.Parse(c.API.BaseURL); err != nil || !strings.HasPrefix(c.API.BaseURL, "http") {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid base URL %q", c.API.BaseURL),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
