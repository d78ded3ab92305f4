// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload stores files attached through the chat page.
package upload

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrNotFound        = errors.New("upload not found")
)

// AllowedExtensions is the fixed allow-list: plain text, PDF, and Word
// documents. Content is never parsed; the extension is the whole check.
var AllowedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".docx": true,
}

// AllowedExtensionList returns the allow-list as a sorted, comma-separated
// string for error messages.
func AllowedExtensionList() string {
	exts := make([]string, 0, len(AllowedExtensions))
	for ext := range AllowedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// =============================================================================
// UPLOADED FILE
// =============================================================================

// File is one stored upload: the bytes on disk plus the registry row
// describing them. Nothing else in the system consumes StoredPath; uploads
// exist for future document-grounded conversation, and until a consumer
// appears the registry is what keeps the orphaned bytes visible.
type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StoredPath string    `json:"stored_path"`
	Ext        string    `json:"ext"`
	Size       int64     `json:"size"`
	StoredAt   time.Time `json:"stored_at"`

	// ExpiresAt is zero when the store runs without a TTL; such files
	// are kept until someone sweeps or deletes them by hand.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the file is past its expiry at the given time.
// Files without an expiry never expire.
func (f *File) Expired(now time.Time) bool {
	return !f.ExpiresAt.IsZero() && !now.Before(f.ExpiresAt)
}

// =============================================================================
// STORE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS uploads (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	stored_path TEXT NOT NULL,
	ext         TEXT NOT NULL,
	size        INTEGER NOT NULL,
	stored_at   INTEGER NOT NULL,
	expires_at  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_uploads_expires ON uploads(expires_at);
`

// Config holds configuration for the upload store.
type Config struct {
	// Dir is where uploaded bytes are written
	Dir string

	// DatabasePath is the SQLite registry location
	// (default: <Dir>/uploads.db)
	DatabasePath string

	// MaxSizeBytes caps a single upload (default: 20MB)
	MaxSizeBytes int64

	// TTL after which a sweep may remove a stored file. Zero keeps
	// files forever.
	TTL time.Duration
}

// DefaultConfig returns the default store configuration rooted at dir.
func DefaultConfig(dir string) *Config {
	return &Config{
		Dir:          dir,
		DatabasePath: filepath.Join(dir, "uploads.db"),
		MaxSizeBytes: 20 * 1024 * 1024,
	}
}

// Store accepts uploads, writes the bytes to disk, and tracks them in a
// SQLite registry. Safe for concurrent use; SQLite itself is limited to
// one writer, so the pool is pinned to a single connection.
type Store struct {
	db      *sql.DB
	dir     string
	maxSize int64
	ttl     time.Duration
}

// NewStore opens (creating if needed) the uploads directory and registry.
func NewStore(cfg *Config) (*Store, error) {
	if cfg == nil || cfg.Dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.Dir, "uploads.db")
	}
	if cfg.MaxSizeBytes <= 0 {
		cfg.MaxSizeBytes = 20 * 1024 * 1024
	}

	if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize registry schema: %w", err)
	}

	return &Store{
		db:      db,
		dir:     cfg.Dir,
		maxSize: cfg.MaxSizeBytes,
		ttl:     cfg.TTL,
	}, nil
}

// Close releases the registry handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory uploads are written to.
func (s *Store) Dir() string {
	return s.dir
}

// MaxSizeBytes returns the per-file size cap.
func (s *Store) MaxSizeBytes() int64 {
	return s.maxSize
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Save validates the claimed filename against the allow-list, writes the
// bytes atomically under a generated name, and records the upload in the
// registry. The claimed name is kept as display metadata only; it never
// becomes a path component.
func (s *Store) Save(ctx context.Context, name string, r io.Reader) (*File, error) {
	cleanName := util.NormalizeFilename(name)
	if cleanName == "" {
		return nil, fmt.Errorf("%w: missing filename", ErrUnsupportedType)
	}

	ext := strings.ToLower(filepath.Ext(cleanName))
	if !AllowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	// Read one byte past the cap to distinguish "exactly at" from "over".
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, s.maxSize)
	}

	now := time.Now()
	file := &File{
		ID:       uuid.NewString(),
		Name:     cleanName,
		Ext:      ext,
		Size:     int64(len(data)),
		StoredAt: now,
	}
	file.StoredPath = filepath.Join(s.dir, file.ID+ext)
	if s.ttl > 0 {
		file.ExpiresAt = now.Add(s.ttl)
	}

	if err := util.AtomicWriteFile(file.StoredPath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	var expires int64
	if !file.ExpiresAt.IsZero() {
		expires = file.ExpiresAt.Unix()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO uploads (id, name, stored_path, ext, size, stored_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		file.ID, file.Name, file.StoredPath, file.Ext, file.Size, file.StoredAt.Unix(), expires)
	if err != nil {
		os.Remove(file.StoredPath)
		return nil, fmt.Errorf("failed to register upload: %w", err)
	}

	return file, nil
}

// Get returns the registry record for id.
func (s *Store) Get(ctx context.Context, id string) (*File, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, stored_path, ext, size, stored_at, expires_at
		 FROM uploads WHERE id = ?`, id)
	file, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return file, err
}

// List returns all registered uploads, newest first.
func (s *Store) List(ctx context.Context) ([]*File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, stored_path, ext, size, stored_at, expires_at
		 FROM uploads ORDER BY stored_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var files []*File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// Count returns the number of registered uploads and their total size.
func (s *Store) Count(ctx context.Context) (int, int64, error) {
	var n int
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size), 0) FROM uploads`).Scan(&n, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count uploads: %w", err)
	}
	return n, total.Int64, nil
}

// Sweep removes files whose expiry has passed, deleting both bytes and
// registry rows, and returns how many were removed. Files without an
// expiry are never swept: with TTL disabled the store keeps everything,
// and the registry is what makes that growth observable.
func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stored_path FROM uploads
		 WHERE expires_at > 0 AND expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to query expired uploads: %w", err)
	}

	type victim struct{ id, path string }
	var victims []victim
	for rows.Next() {
		var v victim
		if err := rows.Scan(&v.id, &v.path); err != nil {
			rows.Close()
			return 0, err
		}
		victims = append(victims, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	removed := 0
	for _, v := range victims {
		if err := os.Remove(v.path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", v.path, err)
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = ?`, v.id); err != nil {
			return removed, fmt.Errorf("failed to deregister %s: %w", v.id, err)
		}
		removed++
	}
	return removed, nil
}

// Delete removes one upload by id, bytes and row both.
func (s *Store) Delete(ctx context.Context, id string) error {
	file, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := os.Remove(file.StoredPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", file.StoredPath, err)
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = ?`, id)
	return err
}

// scanFile reads one registry row from either *sql.Row or *sql.Rows.
func scanFile(row interface{ Scan(...any) error }) (*File, error) {
	var f File
	var storedAt, expiresAt int64
	if err := row.Scan(&f.ID, &f.Name, &f.StoredPath, &f.Ext, &f.Size, &storedAt, &expiresAt); err != nil {
		return nil, err
	}
	f.StoredAt = time.Unix(storedAt, 0)
	if expiresAt > 0 {
		f.ExpiresAt = time.Unix(expiresAt, 0)
	}
	return &f, nil
}
