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

	if cfg.Server.BaseURL != "http://127.0.0.1:5000" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Delivery.WordDelayMs != 30 || cfg.Delivery.StreamWordDelayMs != 35 || cfg.Delivery.UploadWordDelayMs != 20 {
		t.Errorf("delivery defaults = %+v", cfg.Delivery)
	}
	if cfg.Delivery.ShortWordThreshold != 50 {
		t.Errorf("ShortWordThreshold = %d", cfg.Delivery.ShortWordThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
base_url = "http://10.0.0.5:8080"

[delivery]
word_delay_ms = 10

[ui]
theme = "light"
show_quota = false
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Server.BaseURL != "http://10.0.0.5:8080" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Delivery.WordDelayMs != 10 {
		t.Errorf("WordDelayMs = %d, want 10", cfg.Delivery.WordDelayMs)
	}
	// Unspecified values fall back to defaults.
	if cfg.Delivery.StreamWordDelayMs != 35 {
		t.Errorf("StreamWordDelayMs = %d, want default 35", cfg.Delivery.StreamWordDelayMs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
}

func TestLoadFromPath_InvalidURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	os.WriteFile(path, []byte("[server]\nbase_url = \"not a url\"\n"), 0600)

	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected validation error for bad base_url")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RESUMIND_BASE_URL", "http://envhost:9999")
	t.Setenv("RESUMIND_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.BaseURL != "http://envhost:9999" {
		t.Errorf("BaseURL = %q, want env override", cfg.Server.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q, want env override", cfg.UI.Theme)
	}
}

func TestSaveTOML_RoundTripAndPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Server.BaseURL = "http://saved:5000"
	cfg.UI.CompactMode = true

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Server.BaseURL != "http://saved:5000" {
		t.Errorf("BaseURL = %q after round trip", loaded.Server.BaseURL)
	}
	if !loaded.UI.CompactMode {
		t.Error("CompactMode lost in round trip")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"https url", func(c *Config) { c.Server.BaseURL = "https://api.example.com" }, true},
		{"ftp scheme", func(c *Config) { c.Server.BaseURL = "ftp://example.com" }, false},
		{"negative delay", func(c *Config) { c.Delivery.WordDelayMs = -1 }, false},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.valid && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "neon"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "ui.theme") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestDerivedDurations(t *testing.T) {
	cfg := Default()
	if cfg.WordDelay() != 30*time.Millisecond {
		t.Errorf("WordDelay = %v", cfg.WordDelay())
	}
	if cfg.HealthTimeout() != 5*time.Second {
		t.Errorf("HealthTimeout = %v", cfg.HealthTimeout())
	}
	if cfg.QuotaMinInterval() != 2*time.Second {
		t.Errorf("QuotaMinInterval = %v", cfg.QuotaMinInterval())
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := Default()
	cfg.UI.Theme = "light"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML rewrite: %v", err)
	}

	select {
	case got := <-changed:
		if got.UI.Theme != "light" {
			t.Errorf("reloaded theme = %q, want 'light'", got.UI.Theme)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never delivered the reloaded config")
	}
}
