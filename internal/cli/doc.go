// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for rigchat.
//
// This package implements every rigchat command: the default HTTP server
// plus the terminal-side commands that reuse the same gateway, conversation,
// and upload plumbing the server is built on.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - ArgParser: Flag and positional parsing for subcommand handlers
//   - JSONResponse: Envelope for --json output across all commands
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdServe:
//	    cli.HandleServe(args)
//	case cli.CmdAsk:
//	    cli.HandleAsk(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
// Core Commands:
//   - serve: HTTP server with the chat page (default when no command given)
//   - ask: Single question, answer streamed to the terminal
//   - chat: Interactive terminal chat with history and export
//   - doctor: Gateway, model, config, and upload-dir health checks
//   - uploads: Inspect or sweep the stored upload registry
//
// Every command accepts --json for scripting. Exit codes distinguish
// usage, config, network, not-found, and timeout failures.
package cli
