// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local persistence for resumind TUI.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/resumind-tui/internal/model"
)

// =============================================================================
// TRANSCRIPT TYPES
// =============================================================================

// Transcript is an archived conversation.
type Transcript struct {
	ID         int64               `json:"id"`
	SessionID  string              `json:"session_id"`
	StartedAt  time.Time           `json:"started_at"`
	ArchivedAt time.Time           `json:"archived_at"`
	Messages   []TranscriptMessage `json:"messages"`
}

// TranscriptMessage is a single archived message. Only settled content is
// archived; in-flight placeholders never reach the database.
type TranscriptMessage struct {
	Role       string `json:"role"`
	Text       string `json:"text"`
	Timestamp  string `json:"timestamp"`
	Attachment string `json:"attachment,omitempty"`
}

// TranscriptFromMessages converts a conversation snapshot into an
// archivable transcript. Unsettled and errored messages are dropped: a
// transcript records what was actually said, not delivery failures.
func TranscriptFromMessages(sessionID string, messages []model.Message) *Transcript {
	t := &Transcript{SessionID: sessionID}
	for _, m := range messages {
		if m.State != model.StateComplete || m.IsEmpty() {
			continue
		}
		tm := TranscriptMessage{
			Role:      string(m.Role),
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
		if m.Attachment != nil {
			tm.Attachment = m.Attachment.Name
		}
		t.Messages = append(t.Messages, tm)
	}
	return t
}

// TranscriptMeta contains metadata for listing transcripts.
type TranscriptMeta struct {
	ID           int64
	SessionID    string
	ArchivedAt   time.Time
	MessageCount int
	Preview      string
}

// =============================================================================
// ARCHIVE OPERATIONS
// =============================================================================

// ArchiveTranscript stores a finished conversation and returns its row id.
// Empty conversations are skipped rather than archived.
func (s *Store) ArchiveTranscript(t *Transcript) (int64, error) {
	if len(t.Messages) == 0 {
		return 0, nil
	}

	if t.ArchivedAt.IsZero() {
		t.ArchivedAt = time.Now()
	}
	if t.StartedAt.IsZero() {
		t.StartedAt = t.ArchivedAt
	}

	payload, err := json.Marshal(t.Messages)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal transcript: %w", err)
	}

	result, err := s.db.Exec(
		"INSERT INTO transcripts(session_id, started_at, archived_at, messages) VALUES(?, ?, ?, ?)",
		t.SessionID,
		t.StartedAt.Format(time.RFC3339),
		t.ArchivedAt.Format(time.RFC3339),
		string(payload))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	t.ID = id
	return id, nil
}

// LoadTranscript retrieves an archived conversation by row id.
func (s *Store) LoadTranscript(id int64) (*Transcript, error) {
	var (
		t          Transcript
		startedAt  string
		archivedAt string
		payload    string
	)
	err := s.db.QueryRow(
		"SELECT id, session_id, started_at, archived_at, messages FROM transcripts WHERE id = ?", id).
		Scan(&t.ID, &t.SessionID, &startedAt, &archivedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	t.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	t.ArchivedAt, _ = time.Parse(time.RFC3339, archivedAt)
	if err := json.Unmarshal([]byte(payload), &t.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}

	return &t, nil
}

// ListTranscripts returns archived conversations, most recent first.
// limit <= 0 means no limit.
func (s *Store) ListTranscripts(limit int) ([]TranscriptMeta, error) {
	query := "SELECT id, session_id, archived_at, messages FROM transcripts ORDER BY archived_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var metas []TranscriptMeta
	for rows.Next() {
		var (
			meta       TranscriptMeta
			archivedAt string
			payload    string
		)
		if err := rows.Scan(&meta.ID, &meta.SessionID, &archivedAt, &payload); err != nil {
			continue // Skip corrupted rows
		}
		meta.ArchivedAt, _ = time.Parse(time.RFC3339, archivedAt)

		var messages []TranscriptMessage
		if err := json.Unmarshal([]byte(payload), &messages); err != nil {
			continue
		}
		meta.MessageCount = len(messages)
		meta.Preview = previewOf(messages)

		metas = append(metas, meta)
	}

	return metas, rows.Err()
}

// DeleteTranscript removes an archived conversation by row id.
func (s *Store) DeleteTranscript(id int64) error {
	result, err := s.db.Exec("DELETE FROM transcripts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// previewOf returns the first user message, truncated for list display.
func previewOf(messages []TranscriptMessage) string {
	for _, msg := range messages {
		if msg.Role == "user" && msg.Text != "" {
			text := strings.ReplaceAll(msg.Text, "\n", " ")
			runes := []rune(text)
			if len(runes) > 80 {
				return string(runes[:77]) + "..."
			}
			return text
		}
	}
	return ""
}

// =============================================================================
// TRANSCRIPT EXPORT
// =============================================================================

// ExportMarkdown renders the transcript as Markdown.
func (t *Transcript) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Conversation " + t.SessionID + "\n\n")
	sb.WriteString("Archived: " + t.ArchivedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range t.Messages {
		role := "**You**"
		if msg.Role == "assistant" {
			role = "**Assistant**"
		}
		sb.WriteString(role + " (" + msg.Timestamp + "):\n\n")
		if msg.Attachment != "" {
			sb.WriteString("_Attached: " + msg.Attachment + "_\n\n")
		}
		sb.WriteString(msg.Text)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// ExportJSON renders the transcript as pretty-printed JSON.
func (t *Transcript) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}
