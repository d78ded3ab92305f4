// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package config manages rigchat configuration.

Configuration lives in ~/.rigchat/config.toml. A missing file is not an
error: Load returns defaults, which run against a local Ollama on the
standard port with no further setup.

# Precedence

Values are resolved in three layers, later layers winning:

 1. built-in defaults (Default)
 2. the TOML config file
 3. RIGCHAT_* environment variables (ApplyEnvOverrides)

# Key Types

  - Config: root configuration with server, gateway, stream, session,
    upload, and ui sections
  - Watcher: fsnotify-based reload of the config file while the server
    is running
  - ValidateErrors: all validation failures, reported together

# Usage

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	addr := cfg.Addr()
*/
package config
