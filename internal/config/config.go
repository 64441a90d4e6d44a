// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for resumind.
//
// Configuration file location: ~/.resumind/config.toml, with built-in
// defaults and RESUMIND_* environment variable overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete resumind configuration.
type Config struct {
	// Server settings
	Server ServerConfig `toml:"server"`

	// Delivery cadence settings
	Delivery DeliveryConfig `toml:"delivery"`

	// Quota tracking settings
	Quota QuotaConfig `toml:"quota"`

	// Storage settings
	Storage StorageConfig `toml:"storage"`

	// UI settings
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains backend connection configuration.
type ServerConfig struct {
	// BaseURL is the backend API base URL
	BaseURL string `toml:"base_url"`
	// HealthTimeoutSecs bounds the reachability probe
	HealthTimeoutSecs int `toml:"health_timeout_secs"`
	// UserID accompanies feedback submissions (optional)
	UserID string `toml:"user_id"`
}

// DeliveryConfig contains reveal cadence configuration. All delays are
// per word, in milliseconds.
type DeliveryConfig struct {
	WordDelayMs        int `toml:"word_delay_ms"`
	StreamWordDelayMs  int `toml:"stream_word_delay_ms"`
	UploadWordDelayMs  int `toml:"upload_word_delay_ms"`
	ShortWordThreshold int `toml:"short_word_threshold"`
}

// QuotaConfig contains quota refresh configuration.
type QuotaConfig struct {
	// RefreshMinIntervalSecs is the floor between two status fetches
	RefreshMinIntervalSecs int `toml:"refresh_min_interval_secs"`
}

// StorageConfig contains local persistence configuration.
type StorageConfig struct {
	// DatabasePath overrides the default ~/.resumind/resumind.db
	DatabasePath string `toml:"database_path"`
	// ArchiveTranscripts saves finished conversations locally
	ArchiveTranscripts bool `toml:"archive_transcripts"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light"
	Theme string `toml:"theme"`
	// ShowQuota displays the remaining-message counter in the header
	ShowQuota bool `toml:"show_quota"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:           "http://127.0.0.1:5000",
			HealthTimeoutSecs: 5,
		},
		Delivery: DeliveryConfig{
			WordDelayMs:        30,
			StreamWordDelayMs:  35,
			UploadWordDelayMs:  20,
			ShortWordThreshold: 50,
		},
		Quota: QuotaConfig{
			RefreshMinIntervalSecs: 2,
		},
		Storage: StorageConfig{
			ArchiveTranscripts: true,
		},
		UI: UIConfig{
			Theme:     "dark",
			ShowQuota: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the resumind configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".resumind"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.HealthTimeoutSecs <= 0 {
		c.Server.HealthTimeoutSecs = defaults.Server.HealthTimeoutSecs
	}
	if c.Delivery.WordDelayMs <= 0 {
		c.Delivery.WordDelayMs = defaults.Delivery.WordDelayMs
	}
	if c.Delivery.StreamWordDelayMs <= 0 {
		c.Delivery.StreamWordDelayMs = defaults.Delivery.StreamWordDelayMs
	}
	if c.Delivery.UploadWordDelayMs <= 0 {
		c.Delivery.UploadWordDelayMs = defaults.Delivery.UploadWordDelayMs
	}
	if c.Delivery.ShortWordThreshold <= 0 {
		c.Delivery.ShortWordThreshold = defaults.Delivery.ShortWordThreshold
	}
	if c.Quota.RefreshMinIntervalSecs <= 0 {
		c.Quota.RefreshMinIntervalSecs = defaults.Quota.RefreshMinIntervalSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies RESUMIND_* environment variables over the
// loaded values. Environment wins over file, file wins over defaults.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RESUMIND_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("RESUMIND_USER_ID"); v != "" {
		c.Server.UserID = v
	}
	if v := os.Getenv("RESUMIND_DB_PATH"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("RESUMIND_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("RESUMIND_HEALTH_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.HealthTimeoutSecs = n
		}
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
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

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# resumind configuration file")
	fmt.Fprintln(file, "# Generated by resumind - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

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

	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("invalid URL '%s'", c.Server.BaseURL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
		})
	}

	if c.Delivery.WordDelayMs < 0 || c.Delivery.StreamWordDelayMs < 0 || c.Delivery.UploadWordDelayMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "delivery",
			Message: "word delays cannot be negative",
		})
	}
	if c.Delivery.ShortWordThreshold < 0 {
		errs = append(errs, ValidationError{
			Field:   "delivery.short_word_threshold",
			Message: "threshold cannot be negative",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// HealthTimeout returns the health probe timeout as a duration.
func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.Server.HealthTimeoutSecs) * time.Second
}

// WordDelay returns the fallback reveal cadence as a duration.
func (c *Config) WordDelay() time.Duration {
	return time.Duration(c.Delivery.WordDelayMs) * time.Millisecond
}

// StreamWordDelay returns the stream-classified reveal cadence.
func (c *Config) StreamWordDelay() time.Duration {
	return time.Duration(c.Delivery.StreamWordDelayMs) * time.Millisecond
}

// UploadWordDelay returns the upload acknowledgement reveal cadence.
func (c *Config) UploadWordDelay() time.Duration {
	return time.Duration(c.Delivery.UploadWordDelayMs) * time.Millisecond
}

// QuotaMinInterval returns the quota refresh throttle floor.
func (c *Config) QuotaMinInterval() time.Duration {
	return time.Duration(c.Quota.RefreshMinIntervalSecs) * time.Second
}
