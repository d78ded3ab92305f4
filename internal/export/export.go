// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders a conversation transcript as a standalone HTML file.
package export

import (
	"fmt"
	"io"

	"github.com/jeranaias/rigchat/internal/chat"
)

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures transcript rendering.
type Options struct {
	// Title is the document title (default: "rigchat conversation").
	Title string

	// Model names the gateway model in the metadata header.
	Model string

	// Theme for the exported page ("light" or "dark"). Default: "dark".
	Theme string

	// IncludeMetadata includes the header (model, exported-at, turn count).
	IncludeMetadata bool

	// IncludeTimestamps includes per-turn timestamps.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		Title:             "rigchat conversation",
		Theme:             "dark",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

func (o *Options) fillDefaults() {
	if o.Title == "" {
		o.Title = "rigchat conversation"
	}
	if o.Theme != "light" && o.Theme != "dark" {
		o.Theme = "dark"
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// WriteHTML renders the turns as a complete HTML document. The transcript
// is self-contained: CSS and the theme-toggle script are embedded, nothing
// is fetched at view time.
func WriteHTML(w io.Writer, turns []chat.Turn, opts *Options) error {
	if len(turns) == 0 {
		return fmt.Errorf("conversation has no turns")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	opts.fillDefaults()

	doc := buildHTML(turns, opts)
	_, err := io.WriteString(w, doc)
	return err
}

// HTML renders the turns and returns the document bytes.
func HTML(turns []chat.Turn, opts *Options) ([]byte, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("conversation has no turns")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	opts.fillDefaults()
	return []byte(buildHTML(turns, opts)), nil
}

// FileExtension returns the extension for exported transcripts.
func FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for exported transcripts.
func MimeType() string {
	return "text/html; charset=utf-8"
}
