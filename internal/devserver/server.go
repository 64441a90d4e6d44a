// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver provides a local stand-in for the resumind backend.
package devserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultPort is the default port for the dev server.
	DefaultPort = 5000

	// DefaultMessageLimit is the per-session message quota.
	DefaultMessageLimit = 10

	// MaxRequestBodySize bounds JSON request bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxUploadSize bounds multipart upload bodies. Matches the client-side
	// file limit plus multipart overhead.
	MaxUploadSize = 11 * 1024 * 1024

	// streamChunkDelay paces the chunked reply so the client sees more than
	// one read per response.
	streamChunkDelay = 25 * time.Millisecond
)

// =============================================================================
// SESSION STATE
// =============================================================================

// sessionState tracks per-session quota on the server side.
type sessionState struct {
	remaining int
	limit     int
}

// =============================================================================
// SERVER
// =============================================================================

// Server is the stub backend HTTP server.
type Server struct {
	port   int
	router *http.ServeMux
	server *http.Server

	mu       sync.Mutex
	sessions map[string]*sessionState
	limit    int
}

// NewServer creates a dev server on the given port. If port is 0, the
// default port (5000) is used.
func NewServer(port int) *Server {
	if port == 0 {
		port = DefaultPort
	}

	s := &Server{
		port:     port,
		router:   http.NewServeMux(),
		sessions: make(map[string]*sessionState),
		limit:    DefaultMessageLimit,
	}
	s.setupRoutes()
	return s
}

// WithMessageLimit sets the per-session quota for new sessions.
func (s *Server) WithMessageLimit(limit int) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = limit
	return s
}

// Port returns the server port.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the configured handler with middleware applied. Exposed
// for tests that mount the server on httptest.
func (s *Server) Handler() http.Handler {
	return recoveryMiddleware(loggingMiddleware(corsMiddleware(s.router)))
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	log.Printf("DEVSERVER | listening on http://127.0.0.1:%d", s.port)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// =============================================================================
// ROUTES
// =============================================================================

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /api/health", s.handleHealth)
	s.router.HandleFunc("POST /api/chat-stream", s.handleChatStream)
	s.router.HandleFunc("POST /api/chat", s.handleChat)
	s.router.HandleFunc("POST /api/upload/pdf", s.handleUpload)
	s.router.HandleFunc("POST /api/upload", s.handleUpload)
	s.router.HandleFunc("GET /api/rate-limit/status", s.handleRateLimitStatus)
	s.router.HandleFunc("POST /api/feedback", s.handleFeedback)
}

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type uploadResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type rateLimitResponse struct {
	MessagesRemaining int `json:"messages_remaining"`
	MessagesLimit     int `json:"messages_limit"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
	UserID   string `json:"user_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// HANDLERS
// =============================================================================

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleChatStream handles POST /api/chat-stream. The reply body is plain
// chunked text; the session identity travels in the X-Session-ID header.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, sessionID, ok := s.decodeChatRequest(w, r)
	if !ok {
		return
	}

	if !s.consumeQuota(sessionID) {
		s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		return
	}

	reply := cannedReply(req.Message)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Session-ID", sessionID)
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	words := strings.Fields(reply)
	for i := 0; i < len(words); i += 4 {
		end := i + 4
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if end < len(words) {
			chunk += " "
		}
		if _, err := w.Write([]byte(chunk)); err != nil {
			return // client went away
		}
		if canFlush {
			flusher.Flush()
		}
		select {
		case <-r.Context().Done():
			return
		case <-time.After(streamChunkDelay):
		}
	}
}

// handleChat handles POST /api/chat, the non-streaming fallback.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, sessionID, ok := s.decodeChatRequest(w, r)
	if !ok {
		return
	}

	if !s.consumeQuota(sessionID) {
		s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		Response:  cannedReply(req.Message),
		SessionID: sessionID,
	})
}

// handleUpload handles POST /api/upload/pdf.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid upload request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	s.ensureSession(sessionID)

	s.writeJSON(w, http.StatusOK, uploadResponse{
		Response: fmt.Sprintf(
			"Thanks! I've received %s and added it to our conversation. Ask me anything about it.",
			header.Filename),
		SessionID: sessionID,
	})
}

// handleRateLimitStatus handles GET /api/rate-limit/status.
func (s *Server) handleRateLimitStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	s.mu.Lock()
	state, exists := s.sessions[sessionID]
	if !exists {
		state = &sessionState{remaining: s.limit, limit: s.limit}
	}
	resp := rateLimitResponse{
		MessagesRemaining: state.remaining,
		MessagesLimit:     state.limit,
	}
	s.mu.Unlock()

	if exists {
		w.Header().Set("X-Session-ID", sessionID)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleFeedback handles POST /api/feedback.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if strings.TrimSpace(req.Feedback) == "" {
		s.writeError(w, http.StatusBadRequest, "Feedback cannot be empty")
		return
	}

	log.Printf("FEEDBACK | user=%s len=%d", req.UserID, len(req.Feedback))
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeChatRequest parses and validates a chat request body. When it
// returns ok=false an error response has already been written.
func (s *Server) decodeChatRequest(w http.ResponseWriter, r *http.Request) (chatRequest, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return req, "", false
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "Message cannot be empty")
		return req, "", false
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	s.ensureSession(sessionID)
	return req, sessionID, true
}

// ensureSession registers a session if it is not already known.
func (s *Server) ensureSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[id]; !exists {
		s.sessions[id] = &sessionState{remaining: s.limit, limit: s.limit}
	}
}

// consumeQuota decrements the session's remaining messages. Returns false
// when the session is exhausted.
func (s *Server) consumeQuota(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.sessions[id]
	if !exists {
		state = &sessionState{remaining: s.limit, limit: s.limit}
		s.sessions[id] = state
	}
	if state.remaining <= 0 {
		return false
	}
	state.remaining--
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("DEVSERVER | write error: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// generateSessionID returns a server-assigned session identifier.
func generateSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("srv_%d", time.Now().UnixNano())
	}
	return "srv_" + hex.EncodeToString(b)
}

// cannedReply picks a response for the given message. Keyword matching
// keeps manual testing from feeling like an echo server.
func cannedReply(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hello! I'm the resumind assistant. Upload a resume or ask me about career advice."
	case strings.Contains(lower, "resume"):
		return "I can review resumes for structure, impact statements, and keyword coverage. " +
			"Upload one with /attach and I'll take a look at the experience section, " +
			"the skills summary, and the overall formatting to suggest concrete improvements " +
			"you can apply right away."
	case strings.Contains(lower, "thanks") || strings.Contains(lower, "thank you"):
		return "You're welcome! Anything else I can help with?"
	default:
		return "That's a good question. In a real deployment this reply would come from " +
			"the resume-assistant model; the dev server only returns canned text so the " +
			"client's streaming, typing reveal, and quota handling can be exercised locally."
	}
}
