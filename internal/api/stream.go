// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the Resumind
// assistant backend.
package api

import (
	"errors"
	"io"
	"strings"
)

// =============================================================================
// CHAT STREAM
// =============================================================================

// Chunk is a single read from a chat stream. Done marks the last chunk of
// the reply; it can arrive with or without trailing text.
type Chunk struct {
	Text string
	Done bool
}

// ChatStream wraps the open response body of a streaming chat request.
// The backend sends the reply as chunked plain text - no framing, no JSON
// lines - so a read is just "whatever bytes have arrived".
//
// Reads block until the backend produces data; cancelling the request
// context aborts an in-flight read. The stream accumulates everything it
// has seen so the caller can recover the full reply without stitching
// chunks itself.
type ChatStream struct {
	body      io.ReadCloser
	sessionID string

	buf []byte
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	done        bool
}

// NewChatStream wraps a response body. sessionID is the backend's
// X-Session-ID header value, empty when the header was absent.
func NewChatStream(body io.ReadCloser, sessionID string) *ChatStream {
	return &ChatStream{
		body:      body,
		sessionID: sessionID,
		buf:       make([]byte, 4096),
	}
}

// SessionID returns the canonical session id the backend attached to this
// stream, or "" if it sent none.
func (s *ChatStream) SessionID() string {
	return s.sessionID
}

// Next returns the next chunk. After the final chunk (Done true) further
// calls keep returning Done. A mid-stream read failure is classified as a
// stream error: the connection worked, the body broke.
func (s *ChatStream) Next() (Chunk, error) {
	if s.done {
		return Chunk{Done: true}, nil
	}

	n, err := s.body.Read(s.buf)
	if n > 0 {
		text := string(s.buf[:n])
		s.accumulator.WriteString(text)
		// A read can return data and EOF together; that chunk is final.
		if errors.Is(err, io.EOF) {
			s.done = true
			return Chunk{Text: text, Done: true}, nil
		}
		return Chunk{Text: text}, nil
	}

	if err != nil {
		s.done = true
		if errors.Is(err, io.EOF) {
			return Chunk{Done: true}, nil
		}
		return Chunk{Done: true}, &ClientError{Type: ErrTypeStream, Message: "stream interrupted", Cause: err}
	}

	// Zero-byte read without error: treat as an empty chunk.
	return Chunk{}, nil
}

// Accumulated returns everything read from the stream so far.
func (s *ChatStream) Accumulated() string {
	return s.accumulator.String()
}

// Close releases the underlying response body. Safe to call more than once.
func (s *ChatStream) Close() error {
	if s.body == nil {
		return nil
	}
	err := s.body.Close()
	s.body = nil
	s.done = true
	return err
}
