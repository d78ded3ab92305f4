// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload stores files attached through the chat page.
//
// Accepted uploads (.txt, .pdf, .docx only) are written atomically under a
// generated name and recorded in a SQLite registry. The bytes are never
// parsed and no other component reads them back; they are held for future
// document-grounded conversation. Because nothing consumes stored files,
// the registry exists to keep them from becoming invisible: `rigchat
// uploads list` shows what has accumulated, and an optional TTL lets Sweep
// reclaim them.
//
// # Key Types
//
//   - File: one stored upload (display name, generated path, size, expiry)
//   - Store: Save/Get/List/Sweep/Delete over dir + registry
//   - Config: directory, registry path, size cap, TTL
//
// # Usage
//
//	store, err := upload.NewStore(upload.DefaultConfig(dir))
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	file, err := store.Save(ctx, header.Filename, part)
//	if errors.Is(err, upload.ErrUnsupportedType) {
//		// only .txt, .pdf and .docx are accepted
//	}
package upload
