// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// sessions and quotas.
package model

import (
	"sync"
)

// =============================================================================
// PATCH TYPE
// =============================================================================

// Patch is a scoped mutation applied to a message by id. Nil fields are
// left untouched; set fields replace the current value. Producers send the
// full accumulated text on every update rather than deltas, so a patch is
// a whole-object merge and the last applied patch wins.
type Patch struct {
	Text    *string
	State   *DeliveryState
	ErrText *string
}

// TextPatch builds a patch updating text and state together - the common
// case for streaming and typing updates.
func TextPatch(text string, state DeliveryState) Patch {
	return Patch{Text: &text, State: &state}
}

// ErrorPatch builds a patch transitioning a message to the error state
// with a diagnostic shown in place of assistant text.
func ErrorPatch(diagnostic string) Patch {
	state := StateError
	return Patch{Text: &diagnostic, State: &state, ErrText: &diagnostic}
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store is the ordered conversation log: an arena of messages with an
// index keyed by message id. Insertion order is render order.
//
// All mutation goes through Append/Update/Clear under one mutex, which is
// the single choke-point that makes overlapping async producers safe. The
// generation counter lets producers from an abandoned turn (conversation
// cleared mid-stream) detect staleness and discard their writes instead of
// resurrecting entries in a fresh log.
type Store struct {
	mu         sync.Mutex
	messages   []Message
	index      map[uint64]int
	nextID     uint64
	generation uint64
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{
		index:  make(map[uint64]int),
		nextID: 1,
	}
}

// Append adds a message to the log and returns its assigned id.
func (s *Store) Append(msg Message) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextID
	s.nextID++
	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg)
	return msg.ID
}

// Update applies a patch to the message with the given id. Returns false
// if the id is unknown (cleared conversation or bogus id) or the message
// has already settled as complete or errored - callers treat both as
// "discard, don't retry". Settled messages are immutable.
func (s *Store) Update(id uint64, patch Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}

	msg := &s.messages[i]
	if msg.State.Settled() {
		return false
	}
	if patch.Text != nil {
		msg.Text = *patch.Text
	}
	if patch.State != nil {
		msg.State = *patch.State
	}
	if patch.ErrText != nil {
		msg.ErrText = *patch.ErrText
	}
	return true
}

// Get returns a copy of the message with the given id.
func (s *Store) Get(id uint64) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return Message{}, false
	}
	return s.messages[i], true
}

// Snapshot returns a copy of the ordered message sequence. The copy is
// safe for the caller to iterate while producers keep mutating the log.
func (s *Store) Snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the log.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Clear removes all messages and bumps the generation. Message ids are not
// reused across clears, so a stale producer's Update finds no index entry
// and is discarded.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.index = make(map[uint64]int)
	s.generation++
}

// Generation returns the current clear-generation. Producers capture it
// when a turn starts and compare before acting on late callbacks.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// LastAssistant returns the most recent assistant message, if any.
func (s *Store) LastAssistant() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleAssistant {
			return s.messages[i], true
		}
	}
	return Message{}, false
}

// Unsettled returns ids of assistant messages still pending or streaming.
// After a turn settles this should always be empty; the chat view uses it
// to decide whether a spinner is warranted.
func (s *Store) Unsettled() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uint64
	for _, m := range s.messages {
		if m.Role == RoleAssistant && !m.State.Settled() {
			ids = append(ids, m.ID)
		}
	}
	return ids
}
