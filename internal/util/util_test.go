// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the rigchat application.
package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")
	data := []byte("hello, world!")

	err := AtomicWriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("Content mismatch: got %q, want %q", string(content), string(data))
	}
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "subdir", "deep", "test.txt")

	err := AtomicWriteFile(path, []byte("test data"), 0644)
	if err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")

	if err := AtomicWriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("updated"), 0644); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != "updated" {
		t.Errorf("Content not updated: got %q", string(content))
	}
}

func TestAtomicWriteFile_NoTempFileLeftBehind(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.txt")

	if err := AtomicWriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

func TestAtomicWriteFileWithDir(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "newdir", "test.txt")

	err := AtomicWriteFileWithDir(path, []byte("test"), 0600, 0700)
	if err != nil {
		t.Fatalf("AtomicWriteFileWithDir failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("File not created: %v", err)
	}
}

// =============================================================================
// STRING TRUNCATION TESTS
// =============================================================================

func TestTruncateRunes_ASCII(t *testing.T) {
	testCases := []struct {
		input    string
		maxRunes int
		expected string
	}{
		{"hello world", 5, "he..."},
		{"hello", 5, "hello"},
		{"hi", 5, "hi"},
		{"", 5, ""},
		{"hello world", 0, ""},
		{"hello world", 11, "hello world"},
		{"ab", 3, "ab"},
		{"abcd", 3, "abc"}, // When maxRunes <= 3, no ellipsis is added
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := TruncateRunes(tc.input, tc.maxRunes)
			if result != tc.expected {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q",
					tc.input, tc.maxRunes, result, tc.expected)
			}
		})
	}
}

func TestTruncateRunes_UTF8(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		maxRunes int
	}{
		{"emoji", "hello 👋 world", 7},
		{"chinese", "你好世界", 3},
		{"mixed", "hi 日本", 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := TruncateRunes(tc.input, tc.maxRunes)
			if len([]rune(result)) > tc.maxRunes {
				t.Errorf("TruncateRunes result %q has %d runes, want <= %d",
					result, len([]rune(result)), tc.maxRunes)
			}
		})
	}
}

func TestTruncateWidth_CJK(t *testing.T) {
	// Each CJK rune occupies two display columns.
	result := TruncateWidth("你好世界", 4)
	if StringWidth(result) > 4 {
		t.Errorf("TruncateWidth result %q is %d columns, want <= 4",
			result, StringWidth(result))
	}

	if got := TruncateWidth("hello", 10); got != "hello" {
		t.Errorf("TruncateWidth(%q, 10) = %q, want unchanged", "hello", got)
	}
	if got := TruncateWidth("hello", 0); got != "" {
		t.Errorf("TruncateWidth(%q, 0) = %q, want empty", "hello", got)
	}
}

func TestWrapWidth(t *testing.T) {
	wrapped := WrapWidth("the quick brown fox jumps over the lazy dog", 10)
	for _, line := range strings.Split(wrapped, "\n") {
		if StringWidth(line) > 10 {
			t.Errorf("Wrapped line %q is %d columns, want <= 10", line, StringWidth(line))
		}
	}

	// Existing newlines are preserved.
	wrapped = WrapWidth("a\nb", 20)
	if wrapped != "a\nb" {
		t.Errorf("WrapWidth(%q, 20) = %q, want %q", "a\nb", wrapped, "a\nb")
	}
}

func TestFirstLine(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"hello\nworld", "hello"},
		{"  spaced  ", "spaced"},
		{"single", "single"},
		{"\nleading", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := FirstLine(tc.input); got != tc.expected {
				t.Errorf("FirstLine(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

// =============================================================================
// SANITATION TESTS
// =============================================================================

func TestNormalizeText_StripsControls(t *testing.T) {
	input := "hello\x00world\x1b[31m"
	result := NormalizeText(input)
	if strings.ContainsRune(result, 0) || strings.ContainsRune(result, 0x1b) {
		t.Errorf("NormalizeText(%q) = %q, control characters survived", input, result)
	}
}

func TestNormalizeText_KeepsTabsAndNewlines(t *testing.T) {
	input := "line one\n\tline two"
	if got := NormalizeText(input); got != input {
		t.Errorf("NormalizeText(%q) = %q, want unchanged", input, got)
	}
}

func TestNormalizeText_NFC(t *testing.T) {
	// e + combining acute accent composes to a single rune.
	decomposed := "e\u0301"
	result := NormalizeText(decomposed)
	if RuneLen(result) != 1 {
		t.Errorf("NormalizeText(%q) has %d runes, want 1 (composed)", decomposed, RuneLen(result))
	}
}

func TestNormalizeFilename(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "notes.txt", "notes.txt"},
		{"unix path", "/etc/passwd", "passwd"},
		{"windows path", `C:\Users\x\doc.docx`, "doc.docx"},
		{"control chars", "re\x00port.pdf", "report.pdf"},
		{"spaces", "  report.pdf  ", "report.pdf"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeFilename(tc.input); got != tc.expected {
				t.Errorf("NormalizeFilename(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"hi", false},
		{"  hi  ", false},
	}

	for _, tc := range testCases {
		if got := IsBlank(tc.input); got != tc.expected {
			t.Errorf("IsBlank(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}
