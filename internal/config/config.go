// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config manages rigchat configuration files.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// CONFIGURATION TYPES
// =============================================================================

// Config is the root configuration for rigchat.
type Config struct {
	// Version is the config schema version
	Version string `toml:"version" json:"version"`

	Server  ServerConfig  `toml:"server" json:"server"`
	Gateway GatewayConfig `toml:"gateway" json:"gateway"`
	Stream  StreamConfig  `toml:"stream" json:"stream"`
	Session SessionConfig `toml:"session" json:"session"`
	Upload  UploadConfig  `toml:"upload" json:"upload"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the listen address
	Host string `toml:"host" json:"host"`
	// Port is the listen port
	Port int `toml:"port" json:"port"`
	// RateLimitRPS is the per-client request rate (requests per second, 0 disables)
	RateLimitRPS float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
	// RateLimitBurst is the per-client burst allowance
	RateLimitBurst int `toml:"rate_limit_burst" json:"rate_limit_burst"`
}

// GatewayConfig contains Ollama runtime settings.
type GatewayConfig struct {
	// URL is the Ollama base URL
	URL string `toml:"url" json:"url"`
	// Model is the model name sent with every generate call
	Model string `toml:"model" json:"model"`
	// TimeoutSeconds bounds a single generate call
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds"`
	// ConnectTimeoutSeconds bounds liveness probes
	ConnectTimeoutSeconds int `toml:"connect_timeout_seconds" json:"connect_timeout_seconds"`
}

// StreamConfig contains typewriter streaming settings.
type StreamConfig struct {
	// IntervalMs is the delay between character frames in milliseconds
	IntervalMs int `toml:"interval_ms" json:"interval_ms"`
	// Cursor is the marker appended to every in-progress frame
	Cursor string `toml:"cursor" json:"cursor"`
}

// SessionConfig contains session lifecycle settings.
type SessionConfig struct {
	// IdleTimeoutMinutes before an inactive session is evicted
	IdleTimeoutMinutes int `toml:"idle_timeout_minutes" json:"idle_timeout_minutes"`
	// SweepIntervalMinutes between eviction passes
	SweepIntervalMinutes int `toml:"sweep_interval_minutes" json:"sweep_interval_minutes"`
}

// UploadConfig contains file upload settings.
type UploadConfig struct {
	// Dir is the directory uploaded files are stored in
	Dir string `toml:"dir" json:"dir"`
	// MaxSizeMB is the per-file size cap in megabytes
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb"`
	// TTLHours before an upload expires. 0 keeps uploads forever.
	TTLHours int `toml:"ttl_hours" json:"ttl_hours"`
	// Extensions is the accepted extension allow-list
	Extensions []string `toml:"extensions" json:"extensions"`
}

// UIConfig contains chat page settings.
type UIConfig struct {
	// Title is the page heading
	Title string `toml:"title" json:"title"`
	// Theme is the page theme: "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
	// About is the sidebar blurb
	About string `toml:"about" json:"about"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8090,
			RateLimitRPS:   5,
			RateLimitBurst: 10,
		},

		Gateway: GatewayConfig{
			URL:                   "http://127.0.0.1:11434",
			Model:                 "llama3.2",
			TimeoutSeconds:        120,
			ConnectTimeoutSeconds: 5,
		},

		Stream: StreamConfig{
			IntervalMs: 20,
			Cursor:     "▌",
		},

		Session: SessionConfig{
			IdleTimeoutMinutes:   30,
			SweepIntervalMinutes: 5,
		},

		Upload: UploadConfig{
			Dir:        "", // resolved under the config dir when empty
			MaxSizeMB:  20,
			TTLHours:   0,
			Extensions: []string{".txt", ".pdf", ".docx"},
		},

		UI: UIConfig{
			Title: "rigchat",
			Theme: "dark",
			About: "A minimal chat front-end for a local Ollama runtime.",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the rigchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigchat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// UploadDir returns the configured upload directory, defaulting to a
// directory under the config dir when unset.
func (c *Config) UploadDir() (string, error) {
	if c.Upload.Dir != "" {
		return c.Upload.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "uploads"), nil
}

// Addr returns the host:port listen address for the server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GatewayTimeout returns the generate timeout as a duration.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.Gateway.TimeoutSeconds) * time.Second
}

// ConnectTimeout returns the liveness probe timeout as a duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Gateway.ConnectTimeoutSeconds) * time.Second
}

// StreamInterval returns the frame delay as a duration.
func (c *Config) StreamInterval() time.Duration {
	return time.Duration(c.Stream.IntervalMs) * time.Millisecond
}

// IdleTimeout returns the session idle timeout as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Session.IdleTimeoutMinutes) * time.Minute
}

// SweepInterval returns the session sweep interval as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Session.SweepIntervalMinutes) * time.Minute
}

// UploadTTL returns the upload time-to-live as a duration. Zero means
// uploads are never expired.
func (c *Config) UploadTTL() time.Duration {
	return time.Duration(c.Upload.TTLHours) * time.Hour
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file.
// A missing file is not an error: defaults are returned.
// Environment overrides are applied after the file.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from an explicit path.
// A missing file is not an error: defaults are returned.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		fillDefaults(cfg)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults replaces zero values left by a partial config file.
func fillDefaults(cfg *Config) {
	def := Default()

	if cfg.Version == "" {
		cfg.Version = def.Version
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Gateway.URL == "" {
		cfg.Gateway.URL = def.Gateway.URL
	}
	if cfg.Gateway.Model == "" {
		cfg.Gateway.Model = def.Gateway.Model
	}
	if cfg.Gateway.TimeoutSeconds == 0 {
		cfg.Gateway.TimeoutSeconds = def.Gateway.TimeoutSeconds
	}
	if cfg.Gateway.ConnectTimeoutSeconds == 0 {
		cfg.Gateway.ConnectTimeoutSeconds = def.Gateway.ConnectTimeoutSeconds
	}
	if cfg.Stream.IntervalMs == 0 {
		cfg.Stream.IntervalMs = def.Stream.IntervalMs
	}
	if cfg.Stream.Cursor == "" {
		cfg.Stream.Cursor = def.Stream.Cursor
	}
	if cfg.Session.IdleTimeoutMinutes == 0 {
		cfg.Session.IdleTimeoutMinutes = def.Session.IdleTimeoutMinutes
	}
	if cfg.Session.SweepIntervalMinutes == 0 {
		cfg.Session.SweepIntervalMinutes = def.Session.SweepIntervalMinutes
	}
	if cfg.Upload.MaxSizeMB == 0 {
		cfg.Upload.MaxSizeMB = def.Upload.MaxSizeMB
	}
	if len(cfg.Upload.Extensions) == 0 {
		cfg.Upload.Extensions = append([]string(nil), def.Upload.Extensions...)
	}
	if cfg.UI.Title == "" {
		cfg.UI.Title = def.UI.Title
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = def.UI.Theme
	}
	if cfg.UI.About == "" {
		cfg.UI.About = def.UI.About
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to an explicit path.
// The file is written atomically with 0600 permissions.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# rigchat configuration file")
	fmt.Fprintln(&buf, "# Generated by rigchat - edit with care")
	fmt.Fprintln(&buf, "")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid config field.
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

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("invalid port %d, must be 1-65535", c.Server.Port),
		})
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.rate_limit_rps",
			Message: "rate limit cannot be negative",
		})
	}
	if c.Server.RateLimitBurst < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.rate_limit_burst",
			Message: "burst cannot be negative",
		})
	}

	if c.Gateway.URL != "" {
		if u, err := url.Parse(c.Gateway.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "gateway.url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Gateway.URL),
			})
		}
	}
	if c.Gateway.TimeoutSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   "gateway.timeout_seconds",
			Message: "timeout cannot be negative",
		})
	}

	if c.Stream.IntervalMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "stream.interval_ms",
			Message: "interval cannot be negative",
		})
	}

	if c.Session.IdleTimeoutMinutes < 0 {
		errs = append(errs, ValidationError{
			Field:   "session.idle_timeout_minutes",
			Message: "idle timeout cannot be negative",
		})
	}

	if c.Upload.MaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "upload.max_size_mb",
			Message: fmt.Sprintf("invalid size %d, must be at least 1", c.Upload.MaxSizeMB),
		})
	}
	if c.Upload.TTLHours < 0 {
		errs = append(errs, ValidationError{
			Field:   "upload.ttl_hours",
			Message: "ttl cannot be negative",
		})
	}
	for _, ext := range c.Upload.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, ValidationError{
				Field:   "upload.extensions",
				Message: fmt.Sprintf("extension '%s' must start with a dot", ext),
			})
		}
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
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies RIGCHAT_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	// RIGCHAT_HOST
	if host := os.Getenv("RIGCHAT_HOST"); host != "" {
		c.Server.Host = host
	}

	// RIGCHAT_PORT
	if port := os.Getenv("RIGCHAT_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			c.Server.Port = n
		}
	}

	// RIGCHAT_GATEWAY_URL
	if u := os.Getenv("RIGCHAT_GATEWAY_URL"); u != "" {
		c.Gateway.URL = u
	}

	// RIGCHAT_MODEL
	if model := os.Getenv("RIGCHAT_MODEL"); model != "" {
		c.Gateway.Model = model
	}

	// RIGCHAT_TIMEOUT_SECONDS
	if secs := os.Getenv("RIGCHAT_TIMEOUT_SECONDS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil && n > 0 {
			c.Gateway.TimeoutSeconds = n
		}
	}

	// RIGCHAT_STREAM_INTERVAL_MS
	if ms := os.Getenv("RIGCHAT_STREAM_INTERVAL_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n >= 0 {
			c.Stream.IntervalMs = n
		}
	}

	// RIGCHAT_UPLOAD_DIR
	if dir := os.Getenv("RIGCHAT_UPLOAD_DIR"); dir != "" {
		c.Upload.Dir = dir
	}

	// RIGCHAT_THEME
	if theme := os.Getenv("RIGCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}
