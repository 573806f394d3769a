// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL != "http://localhost:3001/api" {
		t.Errorf("BaseURL = %q, want http://localhost:3001/api", cfg.API.BaseURL)
	}
	if cfg.Session.IdleTimeoutSecs != 1800 {
		t.Errorf("IdleTimeoutSecs = %d, want 1800", cfg.Session.IdleTimeoutSecs)
	}
	if cfg.Session.WarningLeadSecs != 300 {
		t.Errorf("WarningLeadSecs = %d, want 300", cfg.Session.WarningLeadSecs)
	}
	if cfg.Session.CheckIntervalSecs != 60 {
		t.Errorf("CheckIntervalSecs = %d, want 60", cfg.Session.CheckIntervalSecs)
	}
	if cfg.Session.ValidationIntervalSecs != 300 {
		t.Errorf("ValidationIntervalSecs = %d, want 300", cfg.Session.ValidationIntervalSecs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := Default()

	if got := cfg.IdleTimeout(); got != 30*time.Minute {
		t.Errorf("IdleTimeout() = %v, want 30m", got)
	}
	if got := cfg.WarningLead(); got != 5*time.Minute {
		t.Errorf("WarningLead() = %v, want 5m", got)
	}
	if got := cfg.CheckInterval(); got != time.Minute {
		t.Errorf("CheckInterval() = %v, want 1m", got)
	}
	if got := cfg.ValidationInterval(); got != 5*time.Minute {
		t.Errorf("ValidationInterval() = %v, want 5m", got)
	}
}

func TestLoadFromPathTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
version = "1.0.0"

[api]
base_url = "https://qna.example.com/api"

[session]
idle_timeout_secs = 600
warning_lead_secs = 120

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.API.BaseURL != "https://qna.example.com/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Session.IdleTimeoutSecs != 600 {
		t.Errorf("IdleTimeoutSecs = %d, want 600", cfg.Session.IdleTimeoutSecs)
	}
	if cfg.Session.WarningLeadSecs != 120 {
		t.Errorf("WarningLeadSecs = %d, want 120", cfg.Session.WarningLeadSecs)
	}
	// Unset values fall back to defaults.
	if cfg.Session.CheckIntervalSecs != 60 {
		t.Errorf("CheckIntervalSecs = %d, want default 60", cfg.Session.CheckIntervalSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.UI.Theme)
	}
}

func TestLoadFromPathJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := `{
		"api": {"base_url": "http://127.0.0.1:8080/api"},
		"session": {"idle_timeout_secs": 900}
	}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:8080/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Session.IdleTimeoutSecs != 900 {
		t.Errorf("IdleTimeoutSecs = %d, want 900", cfg.Session.IdleTimeoutSecs)
	}
}

func TestWarningLeadClamp(t *testing.T) {
	cfg := Default()
	cfg.Session.IdleTimeoutSecs = 300
	cfg.Session.WarningLeadSecs = 600 // lead exceeds timeout

	cfg.SetDefaults()

	if cfg.Session.WarningLeadSecs >= cfg.Session.IdleTimeoutSecs {
		t.Errorf("warning lead %d not clamped below timeout %d",
			cfg.Session.WarningLeadSecs, cfg.Session.IdleTimeoutSecs)
	}
	if cfg.Session.WarningLeadSecs != 150 {
		t.Errorf("WarningLeadSecs = %d, want 150 (half of timeout)", cfg.Session.WarningLeadSecs)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("QNA_API_URL", "https://override.example.com/api")
	t.Setenv("QNA_SESSION_TIMEOUT", "1200000")       // 20 minutes in ms
	t.Setenv("QNA_SESSION_WARNING_TIME", "180000")   // 3 minutes in ms
	t.Setenv("QNA_SESSION_CHECK_INTERVAL", "30000")  // 30 seconds in ms
	t.Setenv("QNA_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.BaseURL != "https://override.example.com/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Session.IdleTimeoutSecs != 1200 {
		t.Errorf("IdleTimeoutSecs = %d, want 1200", cfg.Session.IdleTimeoutSecs)
	}
	if cfg.Session.WarningLeadSecs != 180 {
		t.Errorf("WarningLeadSecs = %d, want 180", cfg.Session.WarningLeadSecs)
	}
	if cfg.Session.CheckIntervalSecs != 30 {
		t.Errorf("CheckIntervalSecs = %d, want 30", cfg.Session.CheckIntervalSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.UI.Theme)
	}
}

func TestApplyEnvOverridesIgnoresGarbage(t *testing.T) {
	t.Setenv("QNA_SESSION_TIMEOUT", "not-a-number")
	t.Setenv("QNA_SESSION_WARNING_TIME", "-5")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Session.IdleTimeoutSecs != 1800 {
		t.Errorf("garbage override changed IdleTimeoutSecs to %d", cfg.Session.IdleTimeoutSecs)
	}
	if cfg.Session.WarningLeadSecs != 300 {
		t.Errorf("negative override changed WarningLeadSecs to %d", cfg.Session.WarningLeadSecs)
	}
}

func TestValidateRejectsBadURL(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "not a url"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for bad base URL")
	}
	if !strings.Contains(err.Error(), "api.base_url") {
		t.Errorf("error %q should mention api.base_url", err.Error())
	}
}

func TestValidateRejectsBadTheme(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "neon"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for bad theme")
	}
}

func TestSaveAndReloadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://qna.example.com/api"
	cfg.Session.IdleTimeoutSecs = 1200

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("BaseURL = %q, want %q", loaded.API.BaseURL, cfg.API.BaseURL)
	}
	if loaded.Session.IdleTimeoutSecs != 1200 {
		t.Errorf("IdleTimeoutSecs = %d, want 1200", loaded.Session.IdleTimeoutSecs)
	}
}

func TestStateDirOverride(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dir = "/tmp/qna-test-state"

	dir, err := cfg.StateDir()
	if err != nil {
		t.Fatalf("StateDir: %v", err)
	}
	if dir != "/tmp/qna-test-state" {
		t.Errorf("StateDir = %q", dir)
	}
}
