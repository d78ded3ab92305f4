// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat contains the data structures for conversation turns.
//
// A conversation is an ordered, append-only sequence of turns, each tagged
// with the speaker role (user or assistant). The sequence lives in memory
// for the lifetime of one session and is never persisted.
//
// # Key Types
//
//   - Role: speaker identifier (user, assistant)
//   - Turn: one immutable message with ID and timestamp
//   - Log: the per-session append-only turn sequence
//
// # Usage
//
//	log := chat.NewLog()
//	log.Append(chat.NewUserTurn("hello"))
//	log.Append(chat.NewAssistantTurn("hi there"))
//	for _, turn := range log.All() {
//		fmt.Println(turn.Role, turn.Content)
//	}
//	log.Clear() // empty again; clearing twice is idempotent
package chat
