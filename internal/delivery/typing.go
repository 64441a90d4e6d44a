// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package delivery turns backend replies into incremental message updates.
package delivery

import (
	"context"
	"strings"
	"time"

	"github.com/jeranaias/resumind-tui/internal/model"
)

// =============================================================================
// TYPING SIMULATOR
// =============================================================================

// Default per-word reveal delays, tuned against the web client's cadence.
const (
	// WordDelay is the cadence for full-body replies (chat fallback).
	WordDelay = 30 * time.Millisecond

	// StreamWordDelay is the cadence for stream-classified short replies.
	StreamWordDelay = 35 * time.Millisecond

	// UploadWordDelay is the cadence for upload acknowledgements,
	// slightly faster since they tend to be boilerplate.
	UploadWordDelay = 20 * time.Millisecond
)

// Simulator reveals a complete reply word by word.
type Simulator struct {
	store *model.Store
}

// NewSimulator creates a simulator writing into the given store.
func NewSimulator(store *model.Store) *Simulator {
	return &Simulator{store: store}
}

// Reveal blocks while revealing fullText into the message one word per
// tick. The join normalizes whitespace during the reveal; the final update
// restores the untruncated original text so formatting survives.
//
// Cancellation stops ticking without touching the store again. A cleared
// conversation has the same effect: the first discarded update aborts the
// reveal, so stale ticks never resurrect a removed message.
func (s *Simulator) Reveal(ctx context.Context, id uint64, fullText string, delay time.Duration) error {
	words := strings.Fields(fullText)

	for i := 1; i <= len(words); i++ {
		partial := strings.Join(words[:i], " ")
		if !s.store.Update(id, model.TextPatch(partial, model.StateStreaming)) {
			return nil // message is gone, nothing to reveal into
		}

		if i == len(words) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	s.store.Update(id, model.TextPatch(fullText, model.StateComplete))
	return nil
}
