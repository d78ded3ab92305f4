// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload stores files attached through the chat page.
package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	cfg.TTL = ttl
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// SAVE TESTS
// =============================================================================

func TestSave_AllowedTypes(t *testing.T) {
	store := newTestStore(t, 0)
	ctx := context.Background()

	testCases := []string{"notes.txt", "paper.pdf", "letter.docx", "REPORT.TXT"}

	for _, name := range testCases {
		t.Run(name, func(t *testing.T) {
			file, err := store.Save(ctx, name, strings.NewReader("content"))
			if err != nil {
				t.Fatalf("Save(%q) failed: %v", name, err)
			}
			if file.ID == "" {
				t.Error("ID should not be empty")
			}
			if file.Size != int64(len("content")) {
				t.Errorf("Size = %d, want %d", file.Size, len("content"))
			}

			// Bytes must be on disk at the stored path.
			data, err := os.ReadFile(file.StoredPath)
			if err != nil {
				t.Fatalf("stored file unreadable: %v", err)
			}
			if string(data) != "content" {
				t.Errorf("stored bytes = %q, want %q", data, "content")
			}
		})
	}
}

func TestSave_RejectsDisallowedTypes(t *testing.T) {
	store := newTestStore(t, 0)
	ctx := context.Background()

	testCases := []string{"run.exe", "script.sh", "archive.zip", "noext", "double.txt.exe"}

	for _, name := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := store.Save(ctx, name, strings.NewReader("x"))
			if !errors.Is(err, ErrUnsupportedType) {
				t.Errorf("Save(%q) error = %v, want ErrUnsupportedType", name, err)
			}
		})
	}
}

func TestSave_GeneratedPathNotClaimedName(t *testing.T) {
	store := newTestStore(t, 0)

	file, err := store.Save(context.Background(), "../../escape.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if filepath.Dir(file.StoredPath) != store.Dir() {
		t.Errorf("StoredPath %q escapes the uploads dir %q", file.StoredPath, store.Dir())
	}
	if strings.Contains(filepath.Base(file.StoredPath), "escape") {
		t.Errorf("StoredPath %q embeds the claimed name", file.StoredPath)
	}
	if file.Name != "escape.txt" {
		t.Errorf("display Name = %q, want %q", file.Name, "escape.txt")
	}
}

func TestSave_SizeCap(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.MaxSizeBytes = 10
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if _, err := store.Save(ctx, "ok.txt", strings.NewReader("1234567890")); err != nil {
		t.Errorf("Save at exactly the cap failed: %v", err)
	}
	_, err = store.Save(ctx, "big.txt", strings.NewReader("12345678901"))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("Save over the cap error = %v, want ErrTooLarge", err)
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestGetAndList(t *testing.T) {
	store := newTestStore(t, 0)
	ctx := context.Background()

	saved, err := store.Save(ctx, "a.txt", strings.NewReader("aaa"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Save(ctx, "b.pdf", strings.NewReader("bbb")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "a.txt" || got.Size != 3 {
		t.Errorf("Get = %+v, want name a.txt size 3", got)
	}

	files, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("List returned %d files, want 2", len(files))
	}
}

func TestGet_NotFound(t *testing.T) {
	store := newTestStore(t, 0)

	_, err := store.Get(context.Background(), "missing-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func TestCount(t *testing.T) {
	store := newTestStore(t, 0)
	ctx := context.Background()

	store.Save(ctx, "a.txt", strings.NewReader("aaa"))
	store.Save(ctx, "b.txt", strings.NewReader("bb"))

	n, total, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	if total != 5 {
		t.Errorf("total size = %d, want 5", total)
	}
}

// =============================================================================
// SWEEP TESTS
// =============================================================================

// With no TTL nothing ever expires: stored files accumulate until removed
// by hand. The registry keeps that accumulation visible.
func TestSweep_NoTTLKeepsEverything(t *testing.T) {
	store := newTestStore(t, 0)
	ctx := context.Background()

	store.Save(ctx, "keep.txt", strings.NewReader("x"))

	removed, err := store.Sweep(ctx, time.Now().Add(1000*time.Hour))
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Sweep removed %d, want 0 without TTL", removed)
	}

	files, _ := store.List(ctx)
	if len(files) != 1 {
		t.Errorf("List returned %d files, want 1", len(files))
	}
}

func TestSweep_RemovesExpired(t *testing.T) {
	store := newTestStore(t, time.Hour)
	ctx := context.Background()

	saved, err := store.Save(ctx, "old.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Not yet expired.
	removed, err := store.Sweep(ctx, time.Now())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Sweep removed %d before expiry, want 0", removed)
	}

	// Past expiry: bytes and row both go.
	removed, err = store.Sweep(ctx, time.Now().Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if _, err := os.Stat(saved.StoredPath); !os.IsNotExist(err) {
		t.Errorf("stored file still exists after sweep")
	}
	if _, err := store.Get(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after sweep = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t, 0)
	ctx := context.Background()

	saved, _ := store.Save(ctx, "gone.txt", strings.NewReader("x"))

	if err := store.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(saved.StoredPath); !os.IsNotExist(err) {
		t.Error("stored file still exists after Delete")
	}
	if err := store.Delete(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestFile_Expired(t *testing.T) {
	now := time.Now()

	forever := &File{}
	if forever.Expired(now.Add(1000 * time.Hour)) {
		t.Error("file without expiry reported expired")
	}

	timed := &File{ExpiresAt: now.Add(time.Hour)}
	if timed.Expired(now) {
		t.Error("file reported expired before its time")
	}
	if !timed.Expired(now.Add(2 * time.Hour)) {
		t.Error("file not reported expired after its time")
	}
}
