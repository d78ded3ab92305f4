// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks per-visitor conversation state for the web surface.
package session

import (
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/rigchat/internal/chat"
)

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestGetOrCreate_NewSession(t *testing.T) {
	mgr := NewManager(DefaultConfig())

	sess, created := mgr.GetOrCreate("")
	if !created {
		t.Error("created = false, want true for empty ID")
	}
	if sess.ID == "" {
		t.Error("session ID should not be empty")
	}
	if sess.Log == nil {
		t.Fatal("session Log should be initialized")
	}
	if sess.Log.Len() != 0 {
		t.Errorf("new session Log.Len = %d, want 0", sess.Log.Len())
	}
}

func TestGetOrCreate_ExistingSession(t *testing.T) {
	mgr := NewManager(DefaultConfig())

	first, _ := mgr.GetOrCreate("")
	first.Log.Append(chat.NewUserTurn("hello"))

	again, created := mgr.GetOrCreate(first.ID)
	if created {
		t.Error("created = true, want false for known ID")
	}
	if again != first {
		t.Error("GetOrCreate returned a different session for the same ID")
	}
	if again.Log.Len() != 1 {
		t.Errorf("Log.Len = %d, want 1", again.Log.Len())
	}
}

func TestGetOrCreate_UnknownIDGetsFreshSession(t *testing.T) {
	mgr := NewManager(DefaultConfig())

	sess, created := mgr.GetOrCreate("stale-cookie-value")
	if !created {
		t.Error("created = false, want true for unknown ID")
	}
	if sess.ID == "stale-cookie-value" {
		t.Error("unknown IDs must not be adopted; a fresh ID is issued")
	}
}

// Two sessions must have fully isolated conversation state.
func TestSessions_IsolatedLogs(t *testing.T) {
	mgr := NewManager(DefaultConfig())

	a, _ := mgr.GetOrCreate("")
	b, _ := mgr.GetOrCreate("")

	a.Log.Append(chat.NewUserTurn("from a"))

	if b.Log.Len() != 0 {
		t.Errorf("session b Log.Len = %d, want 0", b.Log.Len())
	}
	if a.Log.Len() != 1 {
		t.Errorf("session a Log.Len = %d, want 1", a.Log.Len())
	}
}

func TestRemove(t *testing.T) {
	mgr := NewManager(DefaultConfig())
	sess, _ := mgr.GetOrCreate("")

	mgr.Remove(sess.ID)
	if _, ok := mgr.Get(sess.ID); ok {
		t.Error("session still present after Remove")
	}
	if mgr.Len() != 0 {
		t.Errorf("Len = %d, want 0", mgr.Len())
	}
}

// =============================================================================
// SWEEP TESTS
// =============================================================================

func TestSweep_EvictsIdleSessions(t *testing.T) {
	mgr := NewManager(Config{IdleTimeout: 10 * time.Minute, SweepInterval: time.Minute})

	sess, _ := mgr.GetOrCreate("")
	_ = sess

	evicted := mgr.Sweep(time.Now().Add(11 * time.Minute))
	if evicted != 1 {
		t.Errorf("Sweep evicted %d, want 1", evicted)
	}
	if mgr.Len() != 0 {
		t.Errorf("Len = %d, want 0", mgr.Len())
	}
}

func TestSweep_KeepsActiveSessions(t *testing.T) {
	mgr := NewManager(Config{IdleTimeout: 10 * time.Minute, SweepInterval: time.Minute})

	sess, _ := mgr.GetOrCreate("")
	sess.Touch()

	evicted := mgr.Sweep(time.Now().Add(5 * time.Minute))
	if evicted != 0 {
		t.Errorf("Sweep evicted %d, want 0", evicted)
	}
	if _, ok := mgr.Get(sess.ID); !ok {
		t.Error("active session was evicted")
	}
}

func TestSweep_SkipsGeneratingSessions(t *testing.T) {
	mgr := NewManager(Config{IdleTimeout: time.Minute, SweepInterval: time.Minute})

	sess, _ := mgr.GetOrCreate("")
	if !sess.TryAcquireGenerate() {
		t.Fatal("TryAcquireGenerate failed on fresh session")
	}

	evicted := mgr.Sweep(time.Now().Add(time.Hour))
	if evicted != 0 {
		t.Errorf("Sweep evicted %d, want 0 while generating", evicted)
	}

	sess.ReleaseGenerate()
	evicted = mgr.Sweep(time.Now().Add(time.Hour))
	if evicted != 1 {
		t.Errorf("Sweep evicted %d after release, want 1", evicted)
	}
}

// The evict callback must run outside the manager lock: re-entering the
// manager from the callback would deadlock otherwise.
func TestSweep_EvictCallbackMayReenter(t *testing.T) {
	mgr := NewManager(Config{IdleTimeout: time.Minute, SweepInterval: time.Minute})
	mgr.SetEvictCallback(func(s *Session) {
		mgr.Len() // takes the manager lock
	})

	mgr.GetOrCreate("")

	done := make(chan struct{})
	go func() {
		mgr.Sweep(time.Now().Add(time.Hour))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Sweep deadlocked with re-entrant evict callback")
	}
}

// =============================================================================
// GENERATION GATE TESTS
// =============================================================================

func TestGenerateGate_SingleFlight(t *testing.T) {
	mgr := NewManager(DefaultConfig())
	sess, _ := mgr.GetOrCreate("")

	if !sess.TryAcquireGenerate() {
		t.Fatal("first acquire failed")
	}
	if sess.TryAcquireGenerate() {
		t.Error("second acquire succeeded, want rejection while in flight")
	}

	sess.ReleaseGenerate()
	if !sess.TryAcquireGenerate() {
		t.Error("acquire after release failed")
	}
}

func TestGenerateGate_Concurrent(t *testing.T) {
	mgr := NewManager(DefaultConfig())
	sess, _ := mgr.GetOrCreate("")

	var wg sync.WaitGroup
	acquired := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acquired <- sess.TryAcquireGenerate()
		}()
	}
	wg.Wait()
	close(acquired)

	wins := 0
	for ok := range acquired {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Errorf("concurrent acquires won %d times, want exactly 1", wins)
	}
}

func TestTouch_RefreshesLastSeen(t *testing.T) {
	mgr := NewManager(DefaultConfig())
	sess, _ := mgr.GetOrCreate("")

	before := sess.LastSeen()
	time.Sleep(5 * time.Millisecond)
	sess.Touch()

	if !sess.LastSeen().After(before) {
		t.Error("LastSeen did not advance after Touch")
	}
}
