// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat contains the data structures for conversation turns.
package chat

import (
	"sync"
	"time"

	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// CONVERSATION LOG
// =============================================================================

// Log is the append-only turn sequence for one session. It is created
// empty, grows by Append, resets to empty via Clear, and is discarded with
// its session; individual turns are never deleted and nothing is persisted.
//
// A Log is safe for concurrent use. Each session owns exactly one Log and
// the render path receives it by handle; there is no process-wide log.
type Log struct {
	mu        sync.RWMutex
	turns     []Turn
	createdAt time.Time
	clearedAt time.Time
}

// NewLog creates an empty conversation log.
func NewLog() *Log {
	return &Log{
		turns:     make([]Turn, 0),
		createdAt: time.Now(),
	}
}

// Append adds a turn to the end of the log. It always succeeds.
func (l *Log) Append(turn Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, turn)
}

// Clear resets the log to an empty sequence. Clearing an empty log is a
// no-op; calling it twice leaves the log empty both times. A render already
// in flight is not interrupted: its assistant turn, if it completes, lands
// in the cleared log.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = l.turns[:0]
	l.clearedAt = time.Now()
}

// All returns a copy of the turns in insertion order.
func (l *Log) All() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// LastRole returns the role of the most recent turn, or "" for an empty
// log. The user/assistant alternation is expected but never enforced: a
// failed generation leaves two consecutive user turns, and everything that
// consumes the log must tolerate that.
func (l *Log) LastRole() Role {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.turns) == 0 {
		return ""
	}
	return l.turns[len(l.turns)-1].Role
}

// Preview returns a short single-line summary of the most recent turn,
// used by the terminal commands and logging.
func (l *Log) Preview(maxRunes int) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.turns) == 0 {
		return ""
	}
	last := l.turns[len(l.turns)-1]
	return util.TruncateRunes(util.FirstLine(last.Content), maxRunes)
}

// CreatedAt returns when the log was created.
func (l *Log) CreatedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.createdAt
}
