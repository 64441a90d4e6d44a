// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the Resumind
// assistant backend.
package api

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the body for both /api/chat-stream and /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// FeedbackRequest is the body for /api/feedback.
type FeedbackRequest struct {
	Feedback string `json:"feedback"`
	UserID   string `json:"user_id,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the JSON reply from the non-streaming /api/chat endpoint.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id,omitempty"`
}

// UploadResponse is the JSON reply from /api/upload/pdf. Older backend
// builds returned the acknowledgement under "message" instead of
// "response"; Text() accepts either.
type UploadResponse struct {
	Response  string `json:"response,omitempty"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Text returns the acknowledgement text regardless of which field the
// backend used.
func (r UploadResponse) Text() string {
	if r.Response != "" {
		return r.Response
	}
	return r.Message
}

// RateLimitStatus is the JSON reply from /api/rate-limit/status.
// SessionID carries the X-Session-ID response header when the backend
// sent one; it is not part of the JSON body.
type RateLimitStatus struct {
	MessagesRemaining int    `json:"messages_remaining"`
	MessagesLimit     int    `json:"messages_limit"`
	SessionID         string `json:"-"`
}

// apiError is the error envelope the backend attaches to 4xx replies.
type apiError struct {
	Error string `json:"error"`
}
