// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package delivery turns backend replies into incremental message updates.
package delivery

import (
	"context"
	"strings"
	"time"

	"github.com/jeranaias/resumind-tui/internal/api"
	"github.com/jeranaias/resumind-tui/internal/model"
	"github.com/jeranaias/resumind-tui/internal/util"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// ShortWordThreshold is the word count at or below which a reply that
// completed within the classification reads is revealed by typing rather
// than raw chunk updates. Tunable cadence parameter, not a correctness
// invariant.
const ShortWordThreshold = 50

// Config holds the reveal cadence knobs.
type Config struct {
	WordDelay          time.Duration
	StreamWordDelay    time.Duration
	UploadWordDelay    time.Duration
	ShortWordThreshold int
}

// DefaultConfig returns the cadence matching the web client.
func DefaultConfig() Config {
	return Config{
		WordDelay:          WordDelay,
		StreamWordDelay:    StreamWordDelay,
		UploadWordDelay:    UploadWordDelay,
		ShortWordThreshold: ShortWordThreshold,
	}
}

// =============================================================================
// DELIVERY CONTROLLER
// =============================================================================

// Controller owns the stream-vs-typing decision and drives the chosen
// mechanism to completion.
type Controller struct {
	store  *model.Store
	typing *Simulator
	config Config
}

// NewController creates a controller writing into the given store.
func NewController(store *model.Store, config Config) *Controller {
	if config.WordDelay == 0 {
		config.WordDelay = WordDelay
	}
	if config.StreamWordDelay == 0 {
		config.StreamWordDelay = StreamWordDelay
	}
	if config.UploadWordDelay == 0 {
		config.UploadWordDelay = UploadWordDelay
	}
	if config.ShortWordThreshold == 0 {
		config.ShortWordThreshold = ShortWordThreshold
	}
	return &Controller{
		store:  store,
		typing: NewSimulator(store),
		config: config,
	}
}

// =============================================================================
// STREAM HANDLING
// =============================================================================

// HandleStream consumes a chat stream and reveals it into the message,
// blocking until the message settles. Returns the final reply text.
//
// Classification happens after at most two reads: a stream that closed
// within those reads, or whose short accumulated text crossed no chunk
// boundary worth showing, goes through the typing simulator; anything
// still open keeps streaming raw.
func (c *Controller) HandleStream(ctx context.Context, id uint64, stream *api.ChatStream) (string, error) {
	defer stream.Close()

	first, err := stream.Next()
	if err != nil {
		return c.recoverPartial(ctx, id, stream, err)
	}

	var second api.Chunk
	if !first.Done {
		second, err = stream.Next()
		if err != nil {
			return c.recoverPartial(ctx, id, stream, err)
		}
	}

	if c.classifySingle(first, second, stream.Accumulated()) {
		full := strings.TrimSpace(stream.Accumulated())
		if full == "" {
			return "", &api.ClientError{Type: api.ErrTypeStream, Message: "backend sent an empty reply"}
		}
		if err := c.typing.Reveal(ctx, id, full, c.config.StreamWordDelay); err != nil {
			return "", err
		}
		return full, nil
	}

	// Multi-chunk: show what the classification reads gathered, then keep
	// appending as chunks arrive.
	if !c.store.Update(id, model.TextPatch(stream.Accumulated(), model.StateStreaming)) {
		return "", nil // conversation cleared mid-turn
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		chunk, err := stream.Next()
		if err != nil {
			return c.recoverPartial(ctx, id, stream, err)
		}
		if chunk.Text != "" {
			if !c.store.Update(id, model.TextPatch(stream.Accumulated(), model.StateStreaming)) {
				return "", nil
			}
		}
		if chunk.Done {
			break
		}
	}

	full := strings.TrimSpace(stream.Accumulated())
	c.store.Update(id, model.TextPatch(full, model.StateComplete))
	return full, nil
}

// classifySingle is the stream-vs-typing decision function. A reply is
// "single-chunk" when the stream closed within the two classification
// reads with no meaningful second chunk, or when everything that arrived
// is short enough that a typed reveal reads better than chunk bursts.
func (c *Controller) classifySingle(first, second api.Chunk, accumulated string) bool {
	if first.Done {
		return true
	}
	if second.Done && second.Text == "" {
		return true
	}
	if second.Done && util.CountWords(accumulated) <= c.config.ShortWordThreshold {
		return true
	}
	return false
}

// recoverPartial is the mid-stream failure path: whatever text already
// arrived is worth more to the user than an error, so it is revealed by
// typing. With nothing accumulated the failure propagates.
func (c *Controller) recoverPartial(ctx context.Context, id uint64, stream *api.ChatStream, cause error) (string, error) {
	partial := strings.TrimSpace(stream.Accumulated())
	if partial == "" {
		return "", cause
	}
	if err := c.typing.Reveal(ctx, id, partial, c.config.StreamWordDelay); err != nil {
		return "", err
	}
	return partial, nil
}

// =============================================================================
// FULL-BODY HANDLING
// =============================================================================

// HandleFull reveals a complete reply (chat fallback path) by typing.
func (c *Controller) HandleFull(ctx context.Context, id uint64, text string) (string, error) {
	full := strings.TrimSpace(text)
	if full == "" {
		full = "Sorry, I couldn't generate a response."
	}
	if err := c.typing.Reveal(ctx, id, full, c.config.WordDelay); err != nil {
		return "", err
	}
	return full, nil
}

// HandleUpload reveals an upload acknowledgement by typing, on the faster
// upload cadence.
func (c *Controller) HandleUpload(ctx context.Context, id uint64, text string) (string, error) {
	full := strings.TrimSpace(text)
	if full == "" {
		full = "File uploaded successfully"
	}
	if err := c.typing.Reveal(ctx, id, full, c.config.UploadWordDelay); err != nil {
		return "", err
	}
	return full, nil
}
