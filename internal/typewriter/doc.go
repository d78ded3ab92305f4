// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package typewriter turns a complete response into a timed sequence of
// display frames.
//
// The gateway returns one finished string; the chat surfaces show it being
// "typed". Each intermediate frame is the text accumulated so far plus a
// trailing cursor marker, and the final frame is the bare full text. A
// response of N runes therefore produces exactly N+1 frames.
//
// Playback never parks a goroutine in an uninterruptible sleep: the delay
// between frames is a ticker raced against the caller's context, so one
// slow or abandoned session cannot stall anything else.
//
// # Key Types
//
//   - Frame: one display write (text plus final flag)
//   - Sequence: lazy frame iterator for one response
//   - Writer: ticker-driven playback into a Sink
//
// # Usage
//
//	w := typewriter.New(20*time.Millisecond, "▌")
//	err := w.Play(ctx, result.Text, func(f typewriter.Frame) error {
//		return display.Write(f)
//	})
package typewriter
