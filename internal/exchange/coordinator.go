// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange coordinates a full conversation turn.
package exchange

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/jeranaias/resumind-tui/internal/api"
	"github.com/jeranaias/resumind-tui/internal/delivery"
	"github.com/jeranaias/resumind-tui/internal/model"
	"github.com/jeranaias/resumind-tui/internal/quota"
	"github.com/jeranaias/resumind-tui/internal/session"
	"github.com/jeranaias/resumind-tui/internal/upload"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidInput means neither text nor file was provided.
	ErrInvalidInput = errors.New("nothing to send: type a message or attach a file")

	// ErrBusy means a turn is already in flight.
	ErrBusy = errors.New("a message is already being sent")
)

// =============================================================================
// TURN PHASE
// =============================================================================

// Phase is the coordinator's position in the current turn.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSending
	PhaseAwaitingFirstByte
	PhaseStreaming
	PhaseTypingReveal
	PhaseSettled
)

// String returns the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	case PhaseAwaitingFirstByte:
		return "awaiting_first_byte"
	case PhaseStreaming:
		return "streaming"
	case PhaseTypingReveal:
		return "typing_reveal"
	case PhaseSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is the slice of the API client the coordinator drives.
// Satisfied by *api.Client; faked in tests.
type Backend interface {
	ChatStream(ctx context.Context, message, sessionID string) (*api.ChatStream, error)
	Chat(ctx context.Context, message, sessionID string) (*api.ChatResponse, error)
	Upload(ctx context.Context, filename string, content io.Reader, sessionID string) (*api.UploadResponse, error)
}

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator sequences the side effects of a conversation turn.
type Coordinator struct {
	store    *model.Store
	session  *session.Manager
	quota    *quota.Tracker
	delivery *delivery.Controller
	backend  Backend

	mu     sync.Mutex
	phase  Phase
	busy   bool
	cancel context.CancelFunc
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(store *model.Store, sess *session.Manager, tracker *quota.Tracker, ctrl *delivery.Controller, backend Backend) *Coordinator {
	return &Coordinator{
		store:    store,
		session:  sess,
		quota:    tracker,
		delivery: ctrl,
		backend:  backend,
	}
}

// Phase returns the current turn phase.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Coordinator) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit runs one full turn synchronously: it blocks until every
// placeholder this turn appended has settled. Callers run it off the UI
// goroutine.
//
// Backend failures do not surface as a returned error - they settle the
// assistant placeholder with a classified diagnostic, and Submit returns
// nil. Only input validation and busy-rejection return errors, because
// those mean no turn started at all.
func (c *Coordinator) Submit(ctx context.Context, text string, file *upload.File) error {
	if text == "" && file == nil {
		return ErrInvalidInput
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	ctx, c.cancel = context.WithCancel(ctx)
	c.phase = PhaseSending
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.phase = PhaseIdle
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		c.mu.Unlock()
	}()

	var att *model.Attachment
	if file != nil {
		att = &model.Attachment{Name: file.Name, SizeBytes: file.SizeBytes}
	}
	c.store.Append(model.NewUserMessage(text, att))

	// A file and text travel as two sequential requests: the backend must
	// parse the file before the text turn can reference it. Each request
	// gets its own placeholder.
	success := true
	if file != nil {
		if !c.runUploadTurn(ctx, file) {
			success = false
		}
	}
	if text != "" && (file == nil || success) {
		success = c.runChatTurn(ctx, text)
	}

	c.setPhase(PhaseSettled)

	// One refresh per successful turn. Failed turns skip it: the backend
	// does not count a turn it never completed.
	if success {
		c.quota.Refresh(ctx, c.session.ID())
	}
	return nil
}

// runUploadTurn sends the file and settles its placeholder. Returns false
// on failure.
func (c *Coordinator) runUploadTurn(ctx context.Context, file *upload.File) bool {
	id := c.store.Append(model.NewAssistantPlaceholder())

	f, err := os.Open(file.Path)
	if err != nil {
		c.settleError(id, &api.ClientError{Type: api.ErrTypeValidation, Message: "could not read " + file.Name, Cause: err})
		return false
	}
	defer f.Close()

	c.setPhase(PhaseSending)
	resp, err := c.backend.Upload(ctx, file.Name, f, c.session.ID())
	if err != nil {
		c.settleError(id, err)
		return false
	}

	c.session.Adopt(resp.SessionID)

	c.setPhase(PhaseTypingReveal)
	if _, err := c.delivery.HandleUpload(ctx, id, resp.Text()); err != nil {
		c.settleError(id, err)
		return false
	}
	return true
}

// runChatTurn sends the text over the streaming endpoint, falling back to
// the plain endpoint once on a non-success status. Returns false on
// failure.
func (c *Coordinator) runChatTurn(ctx context.Context, text string) bool {
	id := c.store.Append(model.NewAssistantPlaceholder())

	c.setPhase(PhaseSending)
	stream, err := c.backend.ChatStream(ctx, text, c.session.ID())
	if err != nil {
		// The sole retry: a backend that answered with a non-success
		// status gets one shot at the plain endpoint. A dead network
		// fails fast instead.
		if api.IsConnection(err) || errorsIsContext(err) {
			c.settleError(id, err)
			return false
		}
		return c.runFallbackTurn(ctx, id, text)
	}

	c.session.Adopt(stream.SessionID())

	c.setPhase(PhaseStreaming)
	if _, err := c.delivery.HandleStream(ctx, id, stream); err != nil {
		c.settleError(id, err)
		return false
	}
	return true
}

// runFallbackTurn is the non-streaming retry path.
func (c *Coordinator) runFallbackTurn(ctx context.Context, id uint64, text string) bool {
	resp, err := c.backend.Chat(ctx, text, c.session.ID())
	if err != nil {
		c.settleError(id, err)
		return false
	}

	c.session.Adopt(resp.SessionID)

	c.setPhase(PhaseTypingReveal)
	if _, err := c.delivery.HandleFull(ctx, id, resp.Response); err != nil {
		c.settleError(id, err)
		return false
	}
	return true
}

// =============================================================================
// RESET
// =============================================================================

// Cancel abandons the in-flight turn, if any, leaving the conversation
// intact. The cancelled placeholder settles with a "Cancelled." diagnostic.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
}

// Reset abandons any in-flight turn and clears the conversation.
// Outstanding producers find their message ids gone and discard.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.store.Clear()
}

// NewConversation resets the log and the session identity together, so
// the next turn starts a fresh backend conversation with a fresh quota.
func (c *Coordinator) NewConversation() {
	c.Reset()
	c.session.Reset()
	c.quota.Invalidate()
}

// =============================================================================
// ERROR RENDERING
// =============================================================================

// settleError transitions a placeholder to the error state with a
// classified, user-facing diagnostic. The conversation log is the error
// channel; nothing is thrown past this point.
func (c *Coordinator) settleError(id uint64, err error) {
	c.store.Update(id, model.ErrorPatch(renderError(err)))
}

// renderError maps the error taxonomy to the text shown as the
// assistant's reply.
func renderError(err error) string {
	if errorsIsContext(err) {
		return "Cancelled."
	}

	switch api.TypeOf(err) {
	case api.ErrTypeConnection:
		return "Connection error: " + err.Error() + "\n\nCheck that the backend server is running, then retry."
	case api.ErrTypeValidation:
		return err.Error()
	case api.ErrTypeServer:
		return "Sorry, I encountered an error: " + err.Error()
	case api.ErrTypeStream:
		return "The reply was interrupted: " + err.Error()
	default:
		return "Sorry, I encountered an error: " + err.Error()
	}
}

func errorsIsContext(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
