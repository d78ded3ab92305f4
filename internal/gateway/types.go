// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the local Ollama runtime.
package gateway

import "time"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// GenerateRequest is the request body for the /api/generate endpoint.
//
// Only the raw prompt is sent. No system prompt, no options, and no prior
// turns: the model sees exactly what the user typed, nothing more. Prior
// turns are displayed to the user but are not part of the request.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// GenerateResponse is the response from the /api/generate endpoint when
// stream is false: one complete body carrying the whole generation.
type GenerateResponse struct {
	Model              string    `json:"model"`
	CreatedAt          time.Time `json:"created_at"`
	Response           string    `json:"response"`
	Done               bool      `json:"done"`
	DoneReason         string    `json:"done_reason,omitempty"`
	TotalDuration      int64     `json:"total_duration,omitempty"`
	LoadDuration       int64     `json:"load_duration,omitempty"`
	PromptEvalCount    int       `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64     `json:"prompt_eval_duration,omitempty"`
	EvalCount          int       `json:"eval_count,omitempty"`
	EvalDuration       int64     `json:"eval_duration,omitempty"`
}

// =============================================================================
// MODEL TYPES
// =============================================================================

// ModelInfo describes a model available on the gateway.
type ModelInfo struct {
	Name       string       `json:"name"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details,omitempty"`
}

// ModelDetails contains detailed information about a model.
type ModelDetails struct {
	Format            string   `json:"format"`
	Family            string   `json:"family"`
	Families          []string `json:"families"`
	ParameterSize     string   `json:"parameter_size"`
	QuantizationLevel string   `json:"quantization_level"`
}

// ListModelsResponse is the response from the /api/tags endpoint.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// ollamaError is the error body Ollama returns on non-200 responses.
type ollamaError struct {
	Error string `json:"error"`
}

// =============================================================================
// RESULT TYPE
// =============================================================================

// GenerateResult is the successful outcome of a Generate call: the full
// response text plus timing metadata. The text arrives as one string; the
// typing animation derives its increments from Runes.
type GenerateResult struct {
	Text      string
	Model     string
	Duration  time.Duration
	EvalCount int
}

// Runes returns the response text as the sequence of display increments
// the renderer iterates. The gateway yields one complete string, so the
// increment unit is the character.
func (r *GenerateResult) Runes() []rune {
	return []rune(r.Text)
}

// TokensPerSecond returns the generation speed, or 0 when timing metadata
// is absent.
func (r *GenerateResult) TokensPerSecond() float64 {
	if r.Duration <= 0 || r.EvalCount <= 0 {
		return 0
	}
	return float64(r.EvalCount) / r.Duration.Seconds()
}
