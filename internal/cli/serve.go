// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/gateway"
	"github.com/jeranaias/rigchat/internal/server"
	"github.com/jeranaias/rigchat/internal/session"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// shutdownTimeout bounds how long graceful shutdown waits for
	// in-flight requests, including open SSE streams.
	shutdownTimeout = 10 * time.Second
)

// ============================================================================
// SERVE COMMAND
// ============================================================================

// HandleServeCommand starts the HTTP server and blocks until it is
// interrupted or fails.
func HandleServeCommand(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return NewCommandError("serve", "start", "configuration invalid", err)
	}

	client := newGatewayClient(cfg)

	// The gateway being down is not fatal here: the chat page surfaces
	// gateway errors per request, and Ollama may come up later.
	checkCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := client.CheckRunning(checkCtx); err != nil && !args.Quiet {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("[!!] "+gateway.UserMessage(err)))
	}
	cancel()

	sessions := session.NewManager(session.Config{
		IdleTimeout:   cfg.IdleTimeout(),
		SweepInterval: cfg.SweepInterval(),
	})
	sessions.SetEvictCallback(func(s *session.Session) {
		log.Printf("SESSION_EVICT | id=%s turns=%d", s.ID, s.Log.Len())
	})

	uploads, err := openUploadStore(cfg)
	if err != nil {
		return NewCommandError("serve", "open upload store", "upload registry unavailable", err)
	}
	defer uploads.Close()

	srv := server.NewServer(cfg, client, sessions, uploads)

	// Reload stream and UI settings when the config file changes. A
	// missing file is fine; editing it into existence later still
	// triggers a reload because the watcher tracks the directory.
	watcher := watchConfig(args, srv)
	if watcher != nil {
		defer watcher.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sessions.Run(ctx)

	if !args.Quiet {
		printServeBanner(cfg)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return NewCommandError("serve", "listen", cfg.Addr(), err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return NewCommandError("serve", "shutdown", "graceful stop incomplete", err)
	}
	if !args.Quiet {
		fmt.Fprintln(os.Stderr, DimStyle.Render("Server stopped."))
	}
	return nil
}

// watchConfig starts a config file watcher feeding srv.Reload. Returns nil
// when watching is unavailable; the server then runs with the startup config.
func watchConfig(args Args, srv *server.Server) *config.Watcher {
	path := args.ConfigPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil
		}
		path = p
	}

	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		srv.Reload(cfg)
	})
	if err != nil {
		log.Printf("CONFIG_WATCH_FAILED | path=%s error=%v", path, err)
		return nil
	}
	if err := watcher.Watch(); err != nil {
		log.Printf("CONFIG_WATCH_FAILED | path=%s error=%v", path, err)
		watcher.Close()
		return nil
	}
	return watcher
}

// printServeBanner prints startup details to stderr, keeping stdout clean
// for anything piped out of the process.
func printServeBanner(cfg *config.Config) {
	fmt.Fprintln(os.Stderr, TitleStyle.Render("rigchat "+Version))
	fmt.Fprintf(os.Stderr, "%s http://%s/\n", RenderLabel("Serving:", 9), cfg.Addr())
	fmt.Fprintf(os.Stderr, "%s %s (model %s)\n", RenderLabel("Gateway:", 9), cfg.Gateway.URL, cfg.Gateway.Model)
	if dir, err := cfg.UploadDir(); err == nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", RenderLabel("Uploads:", 9), dir)
	}
	if cfg.UploadTTL() == 0 {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("[!!] upload.ttl_hours is 0: stored files never expire"))
	}
	fmt.Fprintln(os.Stderr, DimStyle.Render("Press Ctrl+C to stop."))
	fmt.Fprintln(os.Stderr)
}
