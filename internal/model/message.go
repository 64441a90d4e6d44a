// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// sessions and quotas.
package model

import (
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// DELIVERY STATE
// =============================================================================

// DeliveryState is the lifecycle tag of a message.
//
// User messages are created Complete. Assistant messages start Pending,
// move to Streaming while text is being revealed (by either the raw stream
// or the typing simulator - never both at once), and settle as Complete or
// Error. Settled messages are immutable.
type DeliveryState int

const (
	StatePending DeliveryState = iota
	StateStreaming
	StateComplete
	StateError
)

// String returns the state name for logging and display.
func (s DeliveryState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStreaming:
		return "streaming"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Settled reports whether the state is terminal.
func (s DeliveryState) Settled() bool {
	return s == StateComplete || s == StateError
}

// =============================================================================
// ATTACHMENT
// =============================================================================

// Attachment records the name and size of a file sent with a user message.
// Only metadata is kept in the log; the bytes travel in the upload request.
type Attachment struct {
	Name      string
	SizeBytes int64
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
// The zero ID means "not yet appended"; Store.Append assigns ids.
type Message struct {
	ID         uint64
	Role       Role
	Text       string
	Attachment *Attachment
	Timestamp  string
	State      DeliveryState

	// ErrText carries the classified diagnostic when State is StateError.
	ErrText string
}

// NewUserMessage creates a completed user message, capturing attachment
// metadata when a file accompanies the text.
func NewUserMessage(text string, att *Attachment) Message {
	return Message{
		Role:       RoleUser,
		Text:       text,
		Attachment: att,
		Timestamp:  FormatTime(time.Now()),
		State:      StateComplete,
	}
}

// NewAssistantPlaceholder creates a pending assistant message. Its text is
// filled in incrementally by the delivery controller or typing simulator.
func NewAssistantPlaceholder() Message {
	return Message{
		Role:      RoleAssistant,
		Timestamp: FormatTime(time.Now()),
		State:     StatePending,
	}
}

// Preview returns a truncated single-line preview of the message text.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no text and no attachment.
func (m Message) IsEmpty() bool {
	return m.Text == "" && m.Attachment == nil
}

// FormatTime renders a timestamp the way the chat transcript displays it.
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// =============================================================================
// QUOTA TYPE
// =============================================================================

// Quota is the backend-enforced remaining-message allowance for a session.
// It is always replaced wholesale from the backend, never decremented
// locally: concurrent sessions can change it out from under us.
type Quota struct {
	Remaining int
	Total     int
}

// Known reports whether a quota has ever been fetched.
func (q Quota) Known() bool {
	return q.Total > 0
}

// Exhausted reports whether the allowance has run out.
func (q Quota) Exhausted() bool {
	return q.Known() && q.Remaining <= 0
}

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is the opaque token correlating this client with backend state.
type Session struct {
	ID             string
	CreatedLocally bool
}
