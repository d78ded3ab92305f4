// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package server is the rigchat HTTP layer: it serves the embedded chat page
and streams model responses to it over SSE.

# Request Flow

Every request passes through the middleware chain

	Recovery → SecurityHeaders → Logging → RateLimit → Session

before reaching a handler. The session middleware resolves the
rigchat_session cookie to a *session.Session carrying the conversation
log; handlers never touch a global conversation.

A chat submission (POST /api/chat) appends the user turn, makes one
blocking gateway call with the raw prompt, and plays the response through
the typewriter as data: frames. The assistant turn is committed to the
log only after the final frame is written; a gateway failure produces a
single error frame and commits nothing.

# Key Types

  - Server: route setup, lifecycle, and handlers
  - Gateway: the slice of the Ollama client the handlers need
  - Stats: usage counters surfaced through /health
  - RateLimiter: per-client-IP token buckets

# Usage

	srv := server.NewServer(cfg, gatewayClient, sessions, uploads)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
*/
package server
