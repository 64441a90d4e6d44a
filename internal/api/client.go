// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the Resumind
// assistant backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents a classified error from the backend client.
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

// ErrorType categorizes client errors for handling and display.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeServer
	ErrTypeValidation
	ErrTypeStream
)

// String returns the category name for logging.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeServer:
		return "server"
	case ErrTypeValidation:
		return "validation"
	case ErrTypeStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrBackendDown = &ClientError{Type: ErrTypeConnection, Message: "backend is not reachable"}
)

// IsConnection checks whether an error is a transport-level failure.
func IsConnection(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeConnection
	}
	return false
}

// IsValidation checks whether an error carries a backend rejection message.
func IsValidation(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeValidation
	}
	return false
}

// IsServer checks whether an error is a backend-side (5xx) failure.
func IsServer(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeServer
	}
	return false
}

// TypeOf returns the category of an error, ErrTypeUnknown when the error
// did not come from this package.
func TypeOf(err error) ErrorType {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type
	}
	return ErrTypeUnknown
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend API base URL (default: http://127.0.0.1:5000)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6 resolution issues on Windows
	BaseURL string

	// HealthTimeout bounds the reachability probe (default: 5s)
	HealthTimeout time.Duration

	// UserID accompanies feedback submissions (optional)
	UserID string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:       "http://127.0.0.1:5000",
		HealthTimeout: 5 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Resumind backend API.
//
// The Client is thread-safe for concurrent use.
//
// RELIABILITY: chat and upload requests carry no HTTP timeout - the model
// can legitimately think for a long time, and a stream stays open for as
// long as the reply takes. Cancellation is the caller's job via context.
// Only the health probe is bounded.
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	healthClient *http.Client
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:5000"
	}
	if config.HealthTimeout == 0 {
		config.HealthTimeout = 5 * time.Second
	}

	return &Client{
		config:       config,
		httpClient:   &http.Client{},
		healthClient: &http.Client{Timeout: config.HealthTimeout},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health verifies that the backend is reachable. A reply with any HTTP
// status counts as reachable - only transport failures mean down.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.healthClient.Do(req)
	if err != nil {
		return ErrBackendDown
	}
	drainAndClose(resp.Body)

	return nil
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// ChatStream opens a streaming chat request. On success the returned
// ChatStream owns the response body; the caller must Close it. The
// backend's X-Session-ID header, when present, is surfaced on the stream
// so the session layer can adopt the canonical id.
func (c *Client) ChatStream(ctx context.Context, message, sessionID string) (*ChatStream, error) {
	body, err := json.Marshal(ChatRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat-stream", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer drainAndClose(resp.Body)
		return nil, c.statusError(resp)
	}

	return NewChatStream(resp.Body, resp.Header.Get("X-Session-ID")), nil
}

// Chat sends a non-streaming chat request and returns the complete reply.
// Used as the fallback path when the streaming endpoint fails.
func (c *Client) Chat(ctx context.Context, message, sessionID string) (*ChatResponse, error) {
	body, err := json.Marshal(ChatRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeServer, Message: "failed to decode chat response", Cause: err}
	}

	return &result, nil
}

// =============================================================================
// FILE UPLOAD
// =============================================================================

// Upload sends a resume file to the backend as a multipart request. The
// file travels under the "file" part and the session id as an ordinary
// form field, matching what the backend's parser expects.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader, sessionID string) (*UploadResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build multipart body", Cause: err}
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to read file content", Cause: err}
	}
	if sessionID != "" {
		if err := writer.WriteField("session_id", sessionID); err != nil {
			return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build multipart body", Cause: err}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to build multipart body", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/upload/pdf", &buf)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var result UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeServer, Message: "failed to decode upload response", Cause: err}
	}

	return &result, nil
}

// =============================================================================
// QUOTA AND FEEDBACK
// =============================================================================

// RateLimitStatus fetches the remaining-message allowance for a session.
func (c *Client) RateLimitStatus(ctx context.Context, sessionID string) (*RateLimitStatus, error) {
	endpoint := c.config.BaseURL + "/api/rate-limit/status?session_id=" + url.QueryEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var result RateLimitStatus
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeServer, Message: "failed to decode rate-limit response", Cause: err}
	}
	result.SessionID = resp.Header.Get("X-Session-ID")

	return &result, nil
}

// Feedback submits free-form user feedback. Best-effort: callers log a
// failure but never surface it as a conversation error.
func (c *Client) Feedback(ctx context.Context, feedback string) error {
	body, err := json.Marshal(FeedbackRequest{Feedback: feedback, UserID: c.config.UserID})
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/feedback", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	return nil
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// transportError classifies a round-trip failure. Context cancellation is
// passed through so callers can tell an abandoned turn from a dead backend.
func (c *Client) transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &ClientError{Type: ErrTypeConnection, Message: "backend is not reachable", Cause: err}
}

// statusError classifies a non-200 reply. 4xx replies carry the backend's
// own rejection message when the body holds the error envelope; 5xx means
// the backend broke, and its body is not trusted for display.
func (c *Client) statusError(resp *http.Response) error {
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var envelope apiError
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
			return &ClientError{Type: ErrTypeValidation, Message: envelope.Error}
		}
		return &ClientError{Type: ErrTypeValidation, Message: "request rejected: " + resp.Status}
	}
	if resp.StatusCode >= 500 {
		return &ClientError{Type: ErrTypeServer, Message: "backend error: " + resp.Status}
	}
	return &ClientError{Type: ErrTypeUnknown, Message: "unexpected status: " + resp.Status}
}

// Helper to drain response body so the connection can be reused
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
