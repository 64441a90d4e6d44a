// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quota tracks the backend-enforced message allowance.
package quota

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/resumind-tui/internal/api"
	"github.com/jeranaias/resumind-tui/internal/model"
)

// =============================================================================
// CLIENT INTERFACE
// =============================================================================

// StatusClient is the slice of the API client the tracker needs.
type StatusClient interface {
	RateLimitStatus(ctx context.Context, sessionID string) (*api.RateLimitStatus, error)
}

// =============================================================================
// TRACKER
// =============================================================================

// DefaultMinInterval is the floor between two status fetches.
const DefaultMinInterval = 2 * time.Second

// Tracker caches the remaining-message allowance.
type Tracker struct {
	mu      sync.Mutex
	client  StatusClient
	limiter *rate.Limiter
	current model.Quota
	adopt   func(string) bool
}

// NewTracker creates a tracker. minInterval <= 0 falls back to the default.
func NewTracker(client StatusClient, minInterval time.Duration) *Tracker {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Tracker{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// OnAdopt registers a callback invoked with any session id the status
// endpoint returns in its X-Session-ID header. Set once during wiring,
// before the tracker is shared across goroutines.
func (t *Tracker) OnAdopt(fn func(string) bool) {
	t.adopt = fn
}

// Current returns the cached quota. The zero value means never fetched.
func (t *Tracker) Current() model.Quota {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Refresh fetches the allowance for the given session. Calls inside the
// throttle window return the cached value without touching the network.
// A failed fetch also returns the cached value - stale beats blank - along
// with the error for logging.
func (t *Tracker) Refresh(ctx context.Context, sessionID string) (model.Quota, error) {
	if !t.limiter.Allow() {
		return t.Current(), nil
	}

	status, err := t.client.RateLimitStatus(ctx, sessionID)
	if err != nil {
		return t.Current(), err
	}

	if t.adopt != nil && status.SessionID != "" {
		t.adopt(status.SessionID)
	}

	q := model.Quota{
		Remaining: status.MessagesRemaining,
		Total:     status.MessagesLimit,
	}

	t.mu.Lock()
	t.current = q
	t.mu.Unlock()
	return q, nil
}

// Invalidate drops the cached value. Used when the session identity
// changes and the old allowance no longer applies.
func (t *Tracker) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = model.Quota{}
}
