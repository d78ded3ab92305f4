// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders a conversation transcript as a standalone HTML file.
//
// The exported document embeds its stylesheet and theme-toggle script, so
// it can be opened anywhere without the server. All turn content is
// escaped; fenced code blocks are syntax-highlighted server-side with
// inline styles.
//
// # Key Functions
//
//   - WriteHTML: render turns into an io.Writer
//   - HTML: render turns and return the bytes
//   - Options: title, model, theme, metadata switches
//
// # Usage
//
//	opts := export.DefaultOptions()
//	opts.Model = "llama3.2"
//	err := export.WriteHTML(w, sess.Log.All(), opts)
package export
