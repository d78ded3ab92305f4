// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the local Ollama runtime.
package gateway

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents a failure talking to the model gateway. Every
// error returned by this package is a *ClientError, so a caller can treat
// the (result, error) pair as an explicit ok/err outcome instead of
// matching on exception-like strings.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes gateway errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning    = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
)

// IsModelNotFound checks if an error is a model not found error.
func IsModelNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeModelNotFound
	}
	return errors.Is(err, ErrModelNotFound)
}

// IsNotRunning checks if an error indicates Ollama is not running.
func IsNotRunning(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotRunning
	}
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// UserMessage returns a human-readable description of a gateway error,
// suitable for inline display in the conversation.
func UserMessage(err error) string {
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return err.Error()
	}
	switch clientErr.Type {
	case ErrTypeNotRunning:
		return "Ollama is not running. Start it with: ollama serve"
	case ErrTypeTimeout:
		return "the model took too long to respond"
	case ErrTypeModelNotFound:
		if clientErr.Message != "" && clientErr.Message != ErrModelNotFound.Message {
			return clientErr.Message
		}
		return "model not found. Pull it with: ollama pull <model>"
	default:
		return clientErr.Error()
	}
}
