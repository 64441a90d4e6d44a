// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the client's session identity.
package session

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the persistence surface the manager needs. Implemented by the
// storage package; faked in tests.
type Store interface {
	LoadSessionID() (string, error)
	SaveSessionID(id string) error
	ClearSessionID() error
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the session id for the lifetime of the process.
type Manager struct {
	mu sync.Mutex

	id             string
	createdLocally bool
	adopted        bool

	store    Store // nil in degraded mode
	degraded bool
}

// NewManager creates a manager backed by the given store. A nil store, or
// a store that fails on first load, puts the manager in degraded mode:
// identity works but does not persist.
func NewManager(store Store) *Manager {
	m := &Manager{store: store}

	if store == nil {
		m.degraded = true
		m.id = generateSessionID()
		m.createdLocally = true
		return m
	}

	id, err := store.LoadSessionID()
	if err == nil && id != "" {
		m.id = id
		return m
	}

	m.id = generateSessionID()
	m.createdLocally = true
	if err := store.SaveSessionID(m.id); err != nil {
		m.degraded = true
	}
	return m
}

// ID returns the current session id.
func (m *Manager) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// CreatedLocally reports whether the current id was synthesized by this
// client rather than loaded or adopted.
func (m *Manager) CreatedLocally() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createdLocally
}

// Degraded reports whether persistence is unavailable.
func (m *Manager) Degraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded
}

// Adopt replaces the session id with the backend's canonical one. Empty
// ids and ids equal to the current one are no-ops, so calling this on
// every response is safe and cheap. Returns true when the id changed.
func (m *Manager) Adopt(backendID string) bool {
	if backendID == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if backendID == m.id {
		return false
	}

	m.id = backendID
	m.createdLocally = false
	m.adopted = true

	if m.store != nil {
		if err := m.store.SaveSessionID(backendID); err != nil {
			m.degraded = true
		}
	}
	return true
}

// Reset discards the current identity and synthesizes a fresh one. The
// next turn starts a new backend conversation.
func (m *Manager) Reset() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.id = generateSessionID()
	m.createdLocally = true
	m.adopted = false

	if m.store != nil {
		if err := m.store.SaveSessionID(m.id); err != nil {
			m.degraded = true
		}
	}
	return m.id
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateSessionID synthesizes a locally-unique session id. The format
// mirrors what the backend hands out: a millisecond timestamp plus a short
// random suffix, readable enough to eyeball in logs.
func generateSessionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "sess_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + suffix
}
