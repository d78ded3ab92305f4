// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks per-visitor conversation state for the web surface.
//
// Every visitor gets a Session holding its own chat.Log; the registry hands
// sessions out by ID (carried in a cookie) and evicts them after an idle
// timeout. Conversation state therefore lives exactly as long as the
// session: nothing is persisted, and no two visitors share a log.
//
// # Key Types
//
//   - Session: ID, per-session Log, activity timestamps, in-flight gate
//   - Manager: registry with GetOrCreate/Get/Remove/Sweep/Run
//   - Config: idle timeout and sweep interval
//
// # Usage
//
//	mgr := session.NewManager(session.DefaultConfig())
//	go mgr.Run(ctx)
//
//	sess, created := mgr.GetOrCreate(cookieValue)
//	if created {
//		setCookie(w, sess.ID)
//	}
//	sess.Log.Append(chat.NewUserTurn(prompt))
package session
