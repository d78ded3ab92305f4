// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the rigchat application.
//
// This package contains common helper functions used throughout the
// application for string handling, Unicode normalization, and file
// operations.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth, WrapWidth: display-width aware truncation and wrapping
//   - FirstLine: single-line previews of turn content
//
// Text Sanitation:
//   - NormalizeText: NFC normalization plus control-character stripping
//   - NormalizeFilename: safe display names for uploaded files
//   - IsBlank: whitespace-only detection for submission guarding
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate long strings safely for display
//	display := util.TruncateRunes(longText, 50)
//
//	// Guard blank submissions before invoking the gateway
//	if util.IsBlank(prompt) {
//		return
//	}
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0644)
package util
