// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/export"
	"github.com/jeranaias/rigchat/internal/gateway"
	"github.com/jeranaias/rigchat/internal/typewriter"
	"github.com/jeranaias/rigchat/internal/upload"
	"github.com/jeranaias/rigchat/internal/util"
)

// ============================================================================
// REQUEST / RESPONSE TYPES
// ============================================================================

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Prompt string `json:"prompt"`
}

// streamEvent is one SSE frame of a chat response. Text frames carry the
// growing accumulator; the error frame carries the failure annotation.
type streamEvent struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
	Final bool   `json:"final"`
}

// conversationResponse is the body of GET /api/conversation.
type conversationResponse struct {
	Turns []chat.Turn `json:"turns"`
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status        string `json:"status"`
	Gateway       bool   `json:"gateway"`
	Model         string `json:"model"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Sessions      int    `json:"sessions"`
	ChatRequests  int64  `json:"chat_requests"`
}

// ============================================================================
// PAGE
// ============================================================================

// handleIndex serves the chat page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.currentPage())
}

// ============================================================================
// CHAT
// ============================================================================

// handleChat handles POST /api/chat.
//
// The flow per submission: decode prompt, drop blanks, take the session's
// generate slot, append the user turn, call the gateway once with the raw
// prompt, then replay the response through the typewriter as SSE frames.
// The assistant turn is committed only after the final frame went out;
// failed or disconnected streams commit nothing.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt := util.NormalizeText(req.Prompt)
	if util.IsBlank(prompt) {
		// Blank submissions are no-ops: no gateway call, no log change.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	sess := SessionFromContext(r.Context())
	if sess == nil {
		s.writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	if !sess.TryAcquireGenerate() {
		s.writeError(w, http.StatusConflict, "a response is still streaming for this session")
		return
	}
	defer sess.ReleaseGenerate()

	s.stats.RecordChat()
	sess.Log.Append(chat.NewUserTurn(prompt))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx, cancel := context.WithTimeout(r.Context(), s.currentConfig().GatewayTimeout())
	defer cancel()

	start := time.Now()
	result, err := s.gateway.Generate(ctx, prompt)
	if err != nil {
		s.stats.RecordGatewayError()
		log.Printf("GATEWAY_ERROR | session=%s error=%v", sess.ID, err)

		s.sendEvent(w, flusher, streamEvent{
			Error: "An error occurred: " + gateway.UserMessage(err),
			Final: true,
		})
		s.sendDone(w, flusher)
		return
	}

	err = s.currentWriter().Play(r.Context(), result.Text, func(frame typewriter.Frame) error {
		return s.sendEvent(w, flusher, streamEvent{Text: frame.Text, Final: frame.Final})
	})
	if err != nil {
		// Client went away or the pipe broke mid-animation. The final
		// frame never made it out, so nothing is committed.
		log.Printf("STREAM_ABORTED | session=%s error=%v", sess.ID, err)
		return
	}

	sess.Log.Append(chat.NewAssistantTurn(result.Text))
	log.Printf("CHAT | session=%s prompt_runes=%d response_runes=%d duration=%.2fs",
		sess.ID, util.RuneLen(prompt), util.RuneLen(result.Text), time.Since(start).Seconds())

	s.sendDone(w, flusher)
}

// ============================================================================
// CONVERSATION
// ============================================================================

// handleConversation handles GET /api/conversation.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		s.writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	s.writeJSON(w, http.StatusOK, conversationResponse{Turns: sess.Log.All()})
}

// handleClear handles POST /api/conversation/clear. Clearing an already
// empty conversation succeeds the same way.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		s.writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	sess.Log.Clear()
	log.Printf("CONVERSATION_CLEARED | session=%s", sess.ID)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ============================================================================
// UPLOADS
// ============================================================================

// handleUpload handles POST /api/upload (multipart form, field "file").
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBody := s.uploads.MaxSizeBytes() + uploadFormOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	stored, err := s.uploads.Save(r.Context(), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrUnsupportedType):
			s.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("unsupported file type: only %s are accepted", upload.AllowedExtensionList()))
		case errors.Is(err, upload.ErrTooLarge):
			s.writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
		default:
			log.Printf("UPLOAD_FAILED | name=%s error=%v", header.Filename, err)
			s.writeError(w, http.StatusInternalServerError, "failed to store file")
		}
		return
	}

	s.stats.RecordUpload()
	log.Printf("UPLOAD | id=%s name=%s size=%d", stored.ID, stored.Name, stored.Size)
	s.writeJSON(w, http.StatusOK, stored)
}

// handleUploads handles GET /api/uploads.
func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	files, err := s.uploads.List(r.Context())
	if err != nil {
		log.Printf("UPLOAD_LIST_FAILED | error=%v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list uploads")
		return
	}
	if files == nil {
		files = []*upload.File{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

// ============================================================================
// EXPORT
// ============================================================================

// handleExport handles GET /api/export.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		s.writeError(w, http.StatusInternalServerError, "no session")
		return
	}

	turns := sess.Log.All()
	if len(turns) == 0 {
		s.writeError(w, http.StatusNotFound, "conversation is empty")
		return
	}

	cfg := s.currentConfig()
	opts := export.DefaultOptions()
	opts.Title = cfg.UI.Title + " conversation"
	opts.Model = s.gateway.Model()
	opts.Theme = cfg.UI.Theme
	opts.IncludeMetadata = true

	filename := fmt.Sprintf("rigchat-%s%s", time.Now().Format("2006-01-02"), export.FileExtension())
	w.Header().Set("Content-Type", export.MimeType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteHTML(w, turns, opts); err != nil {
		log.Printf("EXPORT_FAILED | session=%s error=%v", sess.ID, err)
	}
}

// ============================================================================
// MODELS / HEALTH
// ============================================================================

// handleModels handles GET /api/models.
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.currentConfig().ConnectTimeout())
	defer cancel()

	models, err := s.gateway.ListModels(ctx)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, gateway.UserMessage(err))
		return
	}
	if models == nil {
		models = []gateway.ModelInfo{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"models": models})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.currentConfig().ConnectTimeout())
	defer cancel()

	gatewayOK := s.gateway.CheckRunning(ctx) == nil

	status := "ok"
	if !gatewayOK {
		status = "degraded"
	}

	stats := s.stats.Snapshot()
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:        status,
		Gateway:       gatewayOK,
		Model:         s.gateway.Model(),
		Version:       Version,
		UptimeSeconds: int64(s.stats.Uptime().Seconds()),
		Sessions:      s.sessions.Len(),
		ChatRequests:  stats.ChatRequests,
	})
}
