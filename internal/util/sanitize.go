// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the rigchat application.
package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// UNICODE: Inbound text is normalized to a canonical form so that
// visually identical prompts compare and log identically regardless of
// how the client composed them.

// NormalizeText applies NFC normalization and strips non-printable control
// characters (except tab and newline) from user-submitted text.
func NormalizeText(s string) string {
	normalized := norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normalized)
}

// NormalizeFilename applies NFC normalization to an uploaded filename and
// strips path separators and control characters, keeping only the base
// name a client claims. The stored name on disk is always generated; this
// cleaned name is display metadata.
func NormalizeFilename(name string) string {
	normalized := norm.NFC.String(name)
	// Drop any directory components a hostile client sends.
	if i := strings.LastIndexAny(normalized, `/\`); i >= 0 {
		normalized = normalized[i+1:]
	}
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normalized)
	return strings.TrimSpace(cleaned)
}

// IsBlank reports whether a string is empty or whitespace-only.
// Blank submissions are dropped before they reach the model gateway.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
