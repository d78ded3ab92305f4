// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders a conversation transcript as a standalone HTML file.
package export

import (
	"strings"
	"testing"

	"github.com/jeranaias/rigchat/internal/chat"
)

func sampleTurns() []chat.Turn {
	return []chat.Turn{
		chat.NewUserTurn("hello"),
		chat.NewAssistantTurn("hi there"),
	}
}

// =============================================================================
// DOCUMENT TESTS
// =============================================================================

func TestHTML_CompleteDocument(t *testing.T) {
	opts := DefaultOptions()
	opts.Model = "llama3.2"

	data, err := HTML(sampleTurns(), opts)
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	doc := string(data)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>rigchat conversation</title>",
		"dark-theme",
		"user-message",
		"assistant-message",
		"hello",
		"hi there",
		"llama3.2",
		"</html>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestHTML_EmptyConversation(t *testing.T) {
	if _, err := HTML(nil, nil); err == nil {
		t.Error("HTML on empty conversation should fail")
	}
}

func TestHTML_ThemeSelection(t *testing.T) {
	opts := DefaultOptions()
	opts.Theme = "light"

	data, err := HTML(sampleTurns(), opts)
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(string(data), "<body class=\"light-theme\">") {
		t.Error("light theme not applied to body")
	}

	opts.Theme = "neon" // unknown themes fall back to dark
	data, _ = HTML(sampleTurns(), opts)
	if !strings.Contains(string(data), "<body class=\"dark-theme\">") {
		t.Error("unknown theme did not fall back to dark")
	}
}

func TestWriteHTML(t *testing.T) {
	var sb strings.Builder
	if err := WriteHTML(&sb, sampleTurns(), nil); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	if !strings.Contains(sb.String(), "hello") {
		t.Error("written document missing turn content")
	}
}

// =============================================================================
// CONTENT FORMATTING TESTS
// =============================================================================

// Model output is untrusted; markup outside code fences must be escaped.
func TestFormatContent_EscapesHTML(t *testing.T) {
	got := formatContent("<script>alert('x')</script>")
	if strings.Contains(got, "<script>") {
		t.Errorf("formatContent did not escape markup: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("formatContent output %q, want escaped markup", got)
	}
}

func TestFormatContent_CodeFence(t *testing.T) {
	content := "look:\n```go\nfmt.Println(\"hi\")\n```\ndone"
	got := formatContent(content)

	if !strings.Contains(got, "code-block") {
		t.Errorf("no code block rendered in %q", got)
	}
	if !strings.Contains(got, "<div class=\"code-lang\">go</div>") {
		t.Errorf("no language label rendered in %q", got)
	}
	if !strings.Contains(got, "<pre") {
		t.Errorf("no pre block rendered in %q", got)
	}
	if !strings.Contains(got, "done") {
		t.Errorf("prose after the fence lost in %q", got)
	}
}

func TestFormatContent_InlineCode(t *testing.T) {
	got := formatContent("run `rigchat serve` now")
	if !strings.Contains(got, "<code class=\"inline-code\">rigchat serve</code>") {
		t.Errorf("inline code not rendered in %q", got)
	}
}

func TestFormatContent_Paragraphs(t *testing.T) {
	got := formatContent("first\n\nsecond")
	if strings.Count(got, "<p>") != 2 {
		t.Errorf("paragraph count in %q, want 2", got)
	}
}

func TestHighlightHTML_UnknownLanguage(t *testing.T) {
	out, err := highlightHTML("plain text here", "")
	if err != nil {
		t.Fatalf("highlightHTML failed: %v", err)
	}
	if !strings.Contains(out, "plain text here") {
		t.Errorf("highlight output %q lost the code", out)
	}
}

func TestHighlightHTML_EscapesCode(t *testing.T) {
	out, err := highlightHTML("<b>not bold</b>", "html")
	if err != nil {
		t.Fatalf("highlightHTML failed: %v", err)
	}
	if strings.Contains(out, "<b>not bold</b>") {
		t.Errorf("highlight output %q contains raw markup", out)
	}
}
