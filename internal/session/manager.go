// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks per-visitor conversation state for the web surface.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/rigchat/internal/chat"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is one visitor's conversation lifetime. Each session owns its
// Log; handlers receive the session by handle and never touch another
// session's state. There is deliberately no process-wide conversation.
type Session struct {
	ID        string
	Log       *chat.Log
	CreatedAt time.Time

	mu         sync.Mutex
	lastSeen   time.Time
	generating bool
}

func newSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Log:       chat.NewLog(),
		CreatedAt: now,
		lastSeen:  now,
	}
}

// Touch refreshes the activity timestamp, deferring idle eviction.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

// LastSeen returns the time of the most recent activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// IdleTime returns how long since the last activity.
func (s *Session) IdleTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastSeen)
}

// TryAcquireGenerate marks the session as having a generation in flight.
// It returns false if one is already running; each session streams at most
// one response at a time.
func (s *Session) TryAcquireGenerate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return false
	}
	s.generating = true
	return true
}

// ReleaseGenerate clears the in-flight flag.
func (s *Session) ReleaseGenerate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
}

// Generating reports whether a generation is currently in flight.
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// =============================================================================
// MANAGER
// =============================================================================

// Config holds configuration for the session manager.
type Config struct {
	// IdleTimeout is how long a session may sit untouched before the
	// sweep evicts it (default: 30 minutes)
	IdleTimeout time.Duration

	// SweepInterval is how often Run scans for idle sessions
	// (default: 5 minutes)
	SweepInterval time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:   30 * time.Minute,
		SweepInterval: 5 * time.Minute,
	}
}

// Manager is the registry of live sessions, keyed by session ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	idleTimeout   time.Duration
	sweepInterval time.Duration
	onEvict       func(*Session)
}

// NewManager creates a session registry.
func NewManager(cfg Config) *Manager {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	return &Manager{
		sessions:      make(map[string]*Session),
		idleTimeout:   cfg.IdleTimeout,
		sweepInterval: cfg.SweepInterval,
	}
}

// SetEvictCallback sets the function called for each evicted session.
// The callback runs outside the manager lock.
func (m *Manager) SetEvictCallback(fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

// GetOrCreate returns the session for id, creating it when id is unknown
// or empty. The second return reports whether a new session was created;
// callers use it to decide whether to set the cookie.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, ok := m.sessions[id]; ok {
			return s, false
		}
	}

	s := newSession(uuid.NewString())
	m.sessions[s.ID] = s
	return s, true
}

// Get returns the session for id, or false when it does not exist.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove drops a session from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle past the timeout and returns how many were
// removed. A session with a generation in flight is skipped regardless of
// idle time. Evict callbacks run outside the lock.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var evicted []*Session
	for id, s := range m.sessions {
		if s.Generating() {
			continue
		}
		if now.Sub(s.LastSeen()) >= m.idleTimeout {
			delete(m.sessions, id)
			evicted = append(evicted, s)
		}
	}
	onEvict := m.onEvict
	m.mu.Unlock()

	if onEvict != nil {
		for _, s := range evicted {
			onEvict(s)
		}
	}
	return len(evicted)
}

// Run sweeps on an interval until ctx is canceled. Intended to be started
// once as a background goroutine by the server.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}
