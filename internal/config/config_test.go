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

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Gateway.URL != "http://127.0.0.1:11434" {
		t.Errorf("Gateway.URL = %q, want default Ollama URL", cfg.Gateway.URL)
	}
	if cfg.Gateway.Model != "llama3.2" {
		t.Errorf("Gateway.Model = %q, want llama3.2", cfg.Gateway.Model)
	}
	if cfg.Stream.IntervalMs != 20 {
		t.Errorf("Stream.IntervalMs = %d, want 20", cfg.Stream.IntervalMs)
	}
	if cfg.Stream.Cursor != "▌" {
		t.Errorf("Stream.Cursor = %q, want block cursor", cfg.Stream.Cursor)
	}
	if len(cfg.Upload.Extensions) != 3 {
		t.Errorf("Upload.Extensions = %v, want 3 entries", cfg.Upload.Extensions)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()

	if got := cfg.GatewayTimeout(); got != 120*time.Second {
		t.Errorf("GatewayTimeout() = %v, want 120s", got)
	}
	if got := cfg.StreamInterval(); got != 20*time.Millisecond {
		t.Errorf("StreamInterval() = %v, want 20ms", got)
	}
	if got := cfg.IdleTimeout(); got != 30*time.Minute {
		t.Errorf("IdleTimeout() = %v, want 30m", got)
	}
	if got := cfg.UploadTTL(); got != 0 {
		t.Errorf("UploadTTL() = %v, want 0 (keep forever)", got)
	}
}

func TestAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 9000

	if got := cfg.Addr(); got != "0.0.0.0:9000" {
		t.Errorf("Addr() = %q, want 0.0.0.0:9000", got)
	}
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

func TestLoadFromPathMissing(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath(missing) error = %v, want nil", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("missing file should yield defaults, got port %d", cfg.Server.Port)
	}
}

func TestLoadFromPathPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := `
[server]
port = 9999

[gateway]
model = "mistral"
`
	if err := os.WriteFile(path, []byte(partial), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 from file", cfg.Server.Port)
	}
	if cfg.Gateway.Model != "mistral" {
		t.Errorf("Gateway.Model = %q, want mistral from file", cfg.Gateway.Model)
	}
	// Unspecified fields keep defaults.
	if cfg.Gateway.URL != "http://127.0.0.1:11434" {
		t.Errorf("Gateway.URL = %q, want default", cfg.Gateway.URL)
	}
	if cfg.Stream.Cursor != "▌" {
		t.Errorf("Stream.Cursor = %q, want default", cfg.Stream.Cursor)
	}
}

func TestLoadFromPathInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	bad := `
[server]
port = 999999
`
	if err := os.WriteFile(path, []byte(bad), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("LoadFromPath() with invalid port should fail validation")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Server.Port = 8123
	cfg.Gateway.Model = "qwen2.5"
	cfg.UI.Title = "my chat"

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file perm = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Server.Port != 8123 {
		t.Errorf("round trip Server.Port = %d, want 8123", loaded.Server.Port)
	}
	if loaded.Gateway.Model != "qwen2.5" {
		t.Errorf("round trip Gateway.Model = %q, want qwen2.5", loaded.Gateway.Model)
	}
	if loaded.UI.Title != "my chat" {
		t.Errorf("round trip UI.Title = %q, want my chat", loaded.UI.Title)
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"negative rate", func(c *Config) { c.Server.RateLimitRPS = -1 }, "server.rate_limit_rps"},
		{"bad gateway url", func(c *Config) { c.Gateway.URL = "not a url" }, "gateway.url"},
		{"negative timeout", func(c *Config) { c.Gateway.TimeoutSeconds = -5 }, "gateway.timeout_seconds"},
		{"negative interval", func(c *Config) { c.Stream.IntervalMs = -1 }, "stream.interval_ms"},
		{"zero upload size", func(c *Config) { c.Upload.MaxSizeMB = 0 }, "upload.max_size_mb"},
		{"extension without dot", func(c *Config) { c.Upload.Extensions = []string{"txt"} }, "upload.extensions"},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.UI.Theme = "mauve"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want errors")
	}
	var errs ValidateErrors
	ok := false
	if errs, ok = err.(ValidateErrors); !ok {
		t.Fatalf("Validate() returned %T, want ValidateErrors", err)
	}
	if len(errs) != 2 {
		t.Errorf("Validate() collected %d errors, want 2", len(errs))
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RIGCHAT_HOST", "0.0.0.0")
	t.Setenv("RIGCHAT_PORT", "8200")
	t.Setenv("RIGCHAT_GATEWAY_URL", "http://10.0.0.5:11434")
	t.Setenv("RIGCHAT_MODEL", "phi3")
	t.Setenv("RIGCHAT_STREAM_INTERVAL_MS", "5")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want env override", cfg.Server.Host)
	}
	if cfg.Server.Port != 8200 {
		t.Errorf("Server.Port = %d, want 8200", cfg.Server.Port)
	}
	if cfg.Gateway.URL != "http://10.0.0.5:11434" {
		t.Errorf("Gateway.URL = %q, want env override", cfg.Gateway.URL)
	}
	if cfg.Gateway.Model != "phi3" {
		t.Errorf("Gateway.Model = %q, want phi3", cfg.Gateway.Model)
	}
	if cfg.Stream.IntervalMs != 5 {
		t.Errorf("Stream.IntervalMs = %d, want 5", cfg.Stream.IntervalMs)
	}
}

func TestApplyEnvOverridesIgnoresGarbage(t *testing.T) {
	t.Setenv("RIGCHAT_PORT", "not-a-number")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want default kept on bad env value", cfg.Server.Port)
	}
}

// =============================================================================
// PATHS
// =============================================================================

func TestUploadDir(t *testing.T) {
	cfg := Default()

	cfg.Upload.Dir = "/tmp/rigchat-uploads"
	dir, err := cfg.UploadDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/rigchat-uploads" {
		t.Errorf("UploadDir() = %q, want explicit dir", dir)
	}

	cfg.Upload.Dir = ""
	dir, err = cfg.UploadDir()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dir) != "uploads" {
		t.Errorf("UploadDir() = %q, want a path ending in uploads", dir)
	}
}

// =============================================================================
// WATCHER
// =============================================================================

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := SaveToPath(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Gateway.Model = "gemma2"
	if err := SaveToPath(cfg, path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloaded:
		if got.Gateway.Model != "gemma2" {
			t.Errorf("reloaded Gateway.Model = %q, want gemma2", got.Gateway.Model)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report config change")
	}
}
