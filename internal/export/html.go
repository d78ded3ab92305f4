// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/jeranaias/rigchat/internal/chat"
)

// =============================================================================
// DOCUMENT ASSEMBLY
// =============================================================================

func buildHTML(turns []chat.Turn, opts *Options) string {
	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(opts.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"rigchat\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", time.Now().Format(time.RFC3339)))
	sb.WriteString(transcriptCSS)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", opts.Theme))
	sb.WriteString("    <div class=\"container\">\n")

	if opts.IncludeMetadata {
		sb.WriteString(renderHeader(turns, opts))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, turn := range turns {
		sb.WriteString(renderTurn(turn, opts))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>rigchat</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString(themeScript)
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return sb.String()
}

// renderHeader renders the metadata header.
func renderHeader(turns []chat.Turn, opts *Options) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(opts.Title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	if opts.Model != "" {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Model:</strong> %s</span>\n", html.EscapeString(opts.Model)))
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Turns:</strong> %d</span>\n", len(turns)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Started:</strong> %s</span>\n", turns[0].CreatedAt.Format("Jan 2, 2006 15:04")))
	sb.WriteString("                <button class=\"theme-toggle\" onclick=\"toggleTheme()\" title=\"Toggle theme\">[Theme]</button>\n")
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderTurn renders a single turn as a role-tagged bubble.
func renderTurn(turn chat.Turn, opts *Options) string {
	var sb strings.Builder

	roleClass := strings.ToLower(string(turn.Role))
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))

	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", html.EscapeString(turn.Role.DisplayName())))
	if opts.IncludeTimestamps && !turn.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", turn.CreatedAt.Format("15:04:05")))
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(formatContent(turn.Content))
	sb.WriteString("\n                </div>\n")
	sb.WriteString("            </div>\n")

	return sb.String()
}

// =============================================================================
// CONTENT FORMATTING
// =============================================================================

var (
	codeFenceRegex  = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
)

// formatContent converts turn text to HTML. Fenced code blocks are
// tokenized and highlighted server-side; everything outside them is
// escaped, so model output can never inject markup into the transcript.
func formatContent(content string) string {
	var sb strings.Builder

	last := 0
	for _, m := range codeFenceRegex.FindAllStringSubmatchIndex(content, -1) {
		sb.WriteString(formatProse(content[last:m[0]]))
		lang := content[m[2]:m[3]]
		code := content[m[4]:m[5]]
		sb.WriteString(renderCodeBlock(code, lang))
		last = m[1]
	}
	sb.WriteString(formatProse(content[last:]))

	return sb.String()
}

// formatProse escapes plain text and shapes it into paragraphs, handling
// inline code spans.
func formatProse(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	escaped := html.EscapeString(text)
	escaped = inlineCodeRegex.ReplaceAllString(escaped, "<code class=\"inline-code\">$1</code>")

	var sb strings.Builder
	for _, para := range strings.Split(escaped, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.ReplaceAll(para, "\n", "<br>\n"))
		sb.WriteString("</p>\n")
	}
	return sb.String()
}

// renderCodeBlock highlights one fenced block. On tokenizer failure the
// code is emitted escaped and unstyled rather than dropped.
func renderCodeBlock(code, lang string) string {
	code = strings.TrimRight(code, "\n")

	langLabel := ""
	if lang != "" {
		langLabel = fmt.Sprintf("<div class=\"code-lang\">%s</div>", html.EscapeString(lang))
	}

	highlighted, err := highlightHTML(code, lang)
	if err != nil {
		highlighted = fmt.Sprintf("<pre><code>%s</code></pre>", html.EscapeString(code))
	}

	return fmt.Sprintf("<div class=\"code-block\">%s%s</div>\n", langLabel, highlighted)
}
