// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the rigchat HTTP server: the chat page, the SSE
// streaming endpoint, and the conversation/upload/export API.
//
// Endpoints:
//   - GET  /                       - Embedded chat page
//   - POST /api/chat               - Stream one response (SSE)
//   - GET  /api/conversation       - Session turn log
//   - POST /api/conversation/clear - Reset the session log
//   - POST /api/upload             - Store an uploaded file
//   - GET  /api/uploads            - List stored uploads
//   - GET  /api/export             - Download HTML transcript
//   - GET  /api/models             - Models known to the gateway
//   - GET  /health                 - Health check
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/gateway"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/typewriter"
	"github.com/jeranaias/rigchat/internal/upload"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// MaxRequestBodySize caps JSON request bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// uploadFormOverhead is slack added to the upload body cap for
	// multipart framing around the file itself.
	uploadFormOverhead = 64 * 1024
)

// Version is reported in startup logs and the health endpoint.
// main overwrites it with build metadata when available.
var Version = "0.1.0"

// ============================================================================
// GATEWAY INTERFACE
// ============================================================================

// Gateway is the slice of the Ollama client the server needs.
// *gateway.Client satisfies it.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (*gateway.GenerateResult, error)
	CheckRunning(ctx context.Context) error
	ListModels(ctx context.Context) ([]gateway.ModelInfo, error)
	Model() string
}

// ============================================================================
// SERVER STATS
// ============================================================================

// Stats tracks server usage counters.
type Stats struct {
	ChatRequests  int64     `json:"chat_requests"`
	GatewayErrors int64     `json:"gateway_errors"`
	Uploads       int64     `json:"uploads"`
	StartTime     time.Time `json:"start_time"`

	mu sync.Mutex
}

// NewStats creates a Stats anchored at the current time.
func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// RecordChat counts one chat submission.
func (s *Stats) RecordChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ChatRequests++
}

// RecordGatewayError counts one failed gateway call.
func (s *Stats) RecordGatewayError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GatewayErrors++
}

// RecordUpload counts one stored upload.
func (s *Stats) RecordUpload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Uploads++
}

// Snapshot returns a copy of the current counters.
func (s *Stats) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		ChatRequests:  s.ChatRequests,
		GatewayErrors: s.GatewayErrors,
		Uploads:       s.Uploads,
		StartTime:     s.StartTime,
	}
}

// Uptime returns how long the server has been up.
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the rigchat HTTP server.
type Server struct {
	gateway  Gateway
	sessions *session.Manager
	uploads  *upload.Store
	stats    *Stats

	router *http.ServeMux
	server *http.Server

	// mu guards cfg, writer, and page, which a config reload swaps out
	// while requests are in flight.
	mu     sync.RWMutex
	cfg    *config.Config
	writer *typewriter.Writer
	page   []byte
}

// NewServer assembles a Server from its collaborators. The typewriter
// interval and cursor come from the stream section of the config.
func NewServer(cfg *config.Config, gw Gateway, sessions *session.Manager, uploads *upload.Store) *Server {
	s := &Server{
		cfg:      cfg,
		gateway:  gw,
		sessions: sessions,
		uploads:  uploads,
		writer:   typewriter.New(cfg.StreamInterval(), cfg.Stream.Cursor),
		stats:    NewStats(),
		router:   http.NewServeMux(),
	}

	s.page = renderPage(cfg, gw.Model())
	s.setupRoutes()
	return s
}

// Reload applies a fresh config to the running server: stream pacing and
// the rendered page pick it up on the next request. Listen address and
// collaborators are fixed at construction and keep their old values.
func (s *Server) Reload(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	s.writer = typewriter.New(cfg.StreamInterval(), cfg.Stream.Cursor)
	s.page = renderPage(cfg, s.gateway.Model())
	log.Printf("CONFIG_RELOADED | interval_ms=%d theme=%s", cfg.Stream.IntervalMs, cfg.UI.Theme)
}

// Stats returns the server's usage counters.
func (s *Server) Stats() *Stats {
	return s.stats
}

func (s *Server) currentWriter() *typewriter.Writer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writer
}

func (s *Server) currentPage() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

func (s *Server) currentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex)

	s.router.HandleFunc("POST /api/chat", s.handleChat)
	s.router.HandleFunc("GET /api/conversation", s.handleConversation)
	s.router.HandleFunc("POST /api/conversation/clear", s.handleClear)
	s.router.HandleFunc("POST /api/upload", s.handleUpload)
	s.router.HandleFunc("GET /api/uploads", s.handleUploads)
	s.router.HandleFunc("GET /api/export", s.handleExport)
	s.router.HandleFunc("GET /api/models", s.handleModels)

	s.router.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the full middleware-wrapped handler. Exposed so tests
// can drive the server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	cfg := s.currentConfig()

	middlewares := []func(http.Handler) http.Handler{
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(log.Default()),
	}
	if cfg.Server.RateLimitRPS > 0 {
		limiter := NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
		middlewares = append(middlewares, RateLimitMiddleware(limiter))
	}
	middlewares = append(middlewares, SessionMiddleware(s.sessions))

	return Chain(middlewares...)(s.router)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.currentConfig().Addr()

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: SSE streams outlive any fixed write deadline.
		IdleTimeout: 120 * time.Second,
	}

	log.Printf("SERVER_START | addr=%s version=%s model=%s", addr, Version, s.gateway.Model())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	stats := s.stats.Snapshot()
	log.Printf("SERVER_SHUTDOWN | chats=%d uploads=%d uptime=%s",
		stats.ChatRequests, stats.Uploads, s.stats.Uptime().Round(time.Second))

	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    status,
		},
	})
}

// sendEvent writes one SSE data frame and flushes it.
func (s *Server) sendEvent(w http.ResponseWriter, flusher http.Flusher, ev streamEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// sendDone terminates an SSE stream.
func (s *Server) sendDone(w http.ResponseWriter, flusher http.Flusher) {
	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}
