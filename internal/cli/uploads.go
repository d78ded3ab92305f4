// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// uploads.go - Upload registry commands for rigchat CLI.
//
// Command: uploads [subcommand]
//
// Subcommands:
//   list (default)      List stored uploads
//   sweep               Remove expired uploads
//
// Examples:
//   rigchat uploads list            Show every stored upload
//   rigchat uploads list --limit 5  Show the five newest uploads
//   rigchat uploads list --json     Registry contents as JSON
//   rigchat uploads sweep           Delete files past their TTL
//   rigchat uploads sweep --dry-run Report expired files without deleting
//
// With the default configuration the upload TTL is zero, which means
// stored files never expire; list makes that retention visible and
// sweep reports it explicitly.

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/upload"
	"github.com/jeranaias/rigchat/internal/util"
)

// HandleUploadsCommand handles the "uploads" command.
func HandleUploadsCommand(args Args) error {
	parser := NewArgParser(args.Raw)

	cfg, err := loadConfig(args)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("uploads", err).Print()
		}
		return err
	}

	store, err := openUploadStore(cfg)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("uploads", err).Print()
		}
		return err
	}
	defer store.Close()

	switch parser.Subcommand() {
	case "", "list", "ls":
		return handleUploadsList(cfg, store, args, parser)
	case "sweep":
		return handleUploadsSweep(cfg, store, args, parser)
	default:
		return NewValidationError("subcommand", parser.Subcommand(),
			"expected 'list' or 'sweep'")
	}
}

// openUploadStore opens the upload registry configured in cfg.
func openUploadStore(cfg *config.Config) (*upload.Store, error) {
	dir, err := cfg.UploadDir()
	if err != nil {
		return nil, WrapError(err, "cannot resolve upload directory")
	}

	storeCfg := upload.DefaultConfig(dir)
	storeCfg.MaxSizeBytes = int64(cfg.Upload.MaxSizeMB) * 1024 * 1024
	storeCfg.TTL = cfg.UploadTTL()

	store, err := upload.NewStore(storeCfg)
	if err != nil {
		return nil, WrapError(err, "cannot open upload registry")
	}
	return store, nil
}

// =============================================================================
// LIST
// =============================================================================

// handleUploadsList prints the upload registry contents.
func handleUploadsList(cfg *config.Config, store *upload.Store, args Args, parser *ArgParser) error {
	ctx := context.Background()

	files, err := store.List(ctx)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("uploads", err).Print()
		}
		return err
	}

	count, totalSize, err := store.Count(ctx)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("uploads", err).Print()
		}
		return err
	}

	// List comes back newest first, so a limit keeps the most recent files.
	limit := parser.FlagIntOrDefault("limit", 0)
	truncated := false
	if limit > 0 && len(files) > limit {
		files = files[:limit]
		truncated = true
	}

	if args.JSON {
		data := UploadsListData{
			Count:     count,
			TotalSize: totalSize,
			Dir:       store.Dir(),
			Files:     make([]UploadFileInfo, 0, len(files)),
		}
		for _, f := range files {
			info := UploadFileInfo{
				ID:        f.ID,
				Name:      f.Name,
				SizeBytes: f.Size,
				StoredAt:  f.StoredAt.UTC().Format(time.RFC3339),
			}
			if !f.ExpiresAt.IsZero() {
				info.ExpiresAt = f.ExpiresAt.UTC().Format(time.RFC3339)
			}
			data.Files = append(data.Files, info)
		}
		return NewJSONResponse("uploads", data).Print()
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Stored Uploads"))
	fmt.Printf("%s %s\n", DimStyle.Render("Directory:"), ValueStyle.Render(store.Dir()))
	fmt.Printf("%s %d files, %s\n", DimStyle.Render("Total:"), count, humanSize(totalSize))
	fmt.Println(RenderSeparatorAdaptive())

	if len(files) == 0 {
		fmt.Println(DimStyle.Render("(empty)"))
		fmt.Println()
		return nil
	}

	fmt.Println(DimStyle.Render(fmt.Sprintf("%-38s %10s  %-17s %s",
		"NAME", "SIZE", "STORED", "EXPIRES")))

	now := time.Now()
	for _, f := range files {
		expires := "never"
		if !f.ExpiresAt.IsZero() {
			expires = f.ExpiresAt.Format("2006-01-02 15:04")
			if f.Expired(now) {
				expires = WarningStyle.Render(expires + " (expired)")
			}
		}

		// Styled text confuses printf padding, so the name column is
		// padded by display width and the styled field sits last.
		fmt.Printf("%s %10s  %-17s %s\n",
			util.PadRight(util.TruncateWidth(f.Name, 36), 38),
			humanSize(f.Size),
			f.StoredAt.Format("2006-01-02 15:04"),
			expires)
	}

	if truncated {
		fmt.Println(DimStyle.Render(fmt.Sprintf("(showing %d of %d)", len(files), count)))
	}

	fmt.Println()

	if cfg.UploadTTL() == 0 && count > 0 {
		fmt.Printf("%s Upload TTL is 0: files are kept forever and sweep removes nothing\n",
			WarningStyle.Render("[!!]"))
		fmt.Println()
	}

	return nil
}

// =============================================================================
// SWEEP
// =============================================================================

// handleUploadsSweep removes expired uploads from disk and registry.
// With --dry-run it only reports what a sweep would remove.
func handleUploadsSweep(cfg *config.Config, store *upload.Store, args Args, parser *ArgParser) error {
	ctx := context.Background()
	now := time.Now()
	dryRun := parser.BoolFlag("dry-run")

	var removed int
	var err error
	if dryRun {
		removed, err = countExpired(ctx, store, now)
	} else {
		removed, err = store.Sweep(ctx, now)
	}
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("uploads", err).Print()
		}
		return err
	}

	if args.JSON {
		return NewJSONResponse("uploads", UploadsSweepData{Removed: removed, DryRun: dryRun}).Print()
	}

	switch {
	case dryRun && removed > 0:
		fmt.Printf("%s %d expired upload(s) would be removed\n",
			InfoStyle.Render("[DRY RUN]"), removed)
	case dryRun:
		fmt.Println(DimStyle.Render("[DRY RUN] No expired uploads"))
	case removed > 0:
		fmt.Printf("%s Removed %d expired upload(s)\n",
			SuccessStyle.Render("[OK]"), removed)
	default:
		fmt.Println(DimStyle.Render("No expired uploads"))
	}

	if cfg.UploadTTL() == 0 {
		fmt.Printf("%s Upload TTL is 0: nothing ever expires (set upload.ttl_hours to change this)\n",
			WarningStyle.Render("[!!]"))
	}

	return nil
}

// countExpired counts registry entries past their expiry without touching them.
func countExpired(ctx context.Context, store *upload.Store, now time.Time) (int, error) {
	files, err := store.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, f := range files {
		if f.Expired(now) {
			n++
		}
	}
	return n, nil
}

// humanSize formats a byte count for display.
func humanSize(n int64) string {
	switch {
	case n >= 1024*1024*1024:
		return fmt.Sprintf("%.1f GB", float64(n)/(1024*1024*1024))
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
