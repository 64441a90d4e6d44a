// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/resumind-tui/internal/api"
	"github.com/jeranaias/resumind-tui/internal/delivery"
	"github.com/jeranaias/resumind-tui/internal/model"
	"github.com/jeranaias/resumind-tui/internal/quota"
	"github.com/jeranaias/resumind-tui/internal/session"
	"github.com/jeranaias/resumind-tui/internal/upload"
)

// =============================================================================
// FAKES
// =============================================================================

// chunkedReader yields one predefined chunk per Read call.
type chunkedReader struct {
	chunks []string
	pos    int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.chunks) {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[r.pos])
	r.pos++
	return n, nil
}

func (r *chunkedReader) Close() error { return nil }

type fakeBackend struct {
	streamChunks    []string
	streamSessionID string
	streamErr       error

	chatResp *api.ChatResponse
	chatErr  error

	uploadResp *api.UploadResponse
	uploadErr  error

	streamCalls int
	chatCalls   int
	uploadCalls int
}

func (f *fakeBackend) ChatStream(ctx context.Context, message, sessionID string) (*api.ChatStream, error) {
	f.streamCalls++
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return api.NewChatStream(&chunkedReader{chunks: f.streamChunks}, f.streamSessionID), nil
}

func (f *fakeBackend) Chat(ctx context.Context, message, sessionID string) (*api.ChatResponse, error) {
	f.chatCalls++
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return f.chatResp, nil
}

func (f *fakeBackend) Upload(ctx context.Context, filename string, content io.Reader, sessionID string) (*api.UploadResponse, error) {
	f.uploadCalls++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	io.Copy(io.Discard, content)
	return f.uploadResp, nil
}

type fakeStatusClient struct {
	calls int
}

func (f *fakeStatusClient) RateLimitStatus(ctx context.Context, sessionID string) (*api.RateLimitStatus, error) {
	f.calls++
	return &api.RateLimitStatus{MessagesRemaining: 10, MessagesLimit: 15}, nil
}

type harness struct {
	store   *model.Store
	session *session.Manager
	status  *fakeStatusClient
	backend *fakeBackend
	coord   *Coordinator
}

func newHarness(backend *fakeBackend) *harness {
	store := model.NewStore()
	sess := session.NewManager(nil)
	status := &fakeStatusClient{}
	tracker := quota.NewTracker(status, time.Nanosecond)
	ctrl := delivery.NewController(store, delivery.Config{
		WordDelay:       time.Microsecond,
		StreamWordDelay: time.Microsecond,
		UploadWordDelay: time.Microsecond,
	})
	return &harness{
		store:   store,
		session: sess,
		status:  status,
		backend: backend,
		coord:   NewCoordinator(store, sess, tracker, ctrl, backend),
	}
}

func makeFile(t *testing.T, name, content string) *upload.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := upload.Check(path)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	return f
}

// =============================================================================
// INPUT VALIDATION
// =============================================================================

func TestSubmit_EmptyRejectedLocally(t *testing.T) {
	h := newHarness(&fakeBackend{})

	err := h.coord.Submit(context.Background(), "", nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if h.store.Len() != 0 {
		t.Error("rejected submit must not append messages")
	}
	if h.backend.streamCalls+h.backend.chatCalls+h.backend.uploadCalls != 0 {
		t.Error("rejected submit must not hit the network")
	}
}

// =============================================================================
// TEXT TURNS
// =============================================================================

func TestSubmit_StreamedTextTurn(t *testing.T) {
	backend := &fakeBackend{streamChunks: []string{"Hi ", "there!"}, streamSessionID: "sess_srv"}
	h := newHarness(backend)

	if err := h.coord.Submit(context.Background(), "Hello", nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	msgs := h.store.Snapshot()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want user + assistant", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[0].Text != "Hello" {
		t.Errorf("user message = %+v", msgs[0])
	}
	if msgs[1].State != model.StateComplete || msgs[1].Text != "Hi there!" {
		t.Errorf("assistant message = %+v", msgs[1])
	}

	if h.session.ID() != "sess_srv" {
		t.Errorf("session id = %q, want adopted 'sess_srv'", h.session.ID())
	}
	if h.status.calls != 1 {
		t.Errorf("quota refreshed %d times, want 1", h.status.calls)
	}
	if len(h.store.Unsettled()) != 0 {
		t.Error("turn settled with unsettled messages")
	}
}

func TestSubmit_FallbackOnServerError(t *testing.T) {
	backend := &fakeBackend{
		streamErr: &api.ClientError{Type: api.ErrTypeServer, Message: "backend error: 500"},
		chatResp:  &api.ChatResponse{Response: "ok", SessionID: "s2"},
	}
	h := newHarness(backend)

	if err := h.coord.Submit(context.Background(), "question", nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if backend.chatCalls != 1 {
		t.Errorf("fallback called %d times, want 1", backend.chatCalls)
	}

	msgs := h.store.Snapshot()
	last := msgs[len(msgs)-1]
	if last.State != model.StateComplete || last.Text != "ok" {
		t.Errorf("assistant message = %+v", last)
	}
	if h.session.ID() != "s2" {
		t.Errorf("session id = %q, want 's2'", h.session.ID())
	}
	if h.status.calls != 1 {
		t.Errorf("quota refreshed %d times, want 1", h.status.calls)
	}
}

func TestSubmit_ConnectionFailureFailsFast(t *testing.T) {
	backend := &fakeBackend{
		streamErr: &api.ClientError{Type: api.ErrTypeConnection, Message: "backend is not reachable"},
	}
	h := newHarness(backend)

	if err := h.coord.Submit(context.Background(), "hello?", nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// No fallback on a dead network.
	if backend.chatCalls != 0 {
		t.Errorf("fallback called %d times on connection failure, want 0", backend.chatCalls)
	}

	msgs := h.store.Snapshot()
	last := msgs[len(msgs)-1]
	if last.State != model.StateError {
		t.Errorf("State = %v, want error", last.State)
	}
	if !strings.Contains(last.Text, "Connection error") {
		t.Errorf("diagnostic = %q, want connection-classified text", last.Text)
	}
	if h.status.calls != 0 {
		t.Errorf("failed turn refreshed quota %d times, want 0", h.status.calls)
	}
}

func TestSubmit_ValidationErrorShowsBackendMessage(t *testing.T) {
	backend := &fakeBackend{
		streamErr: &api.ClientError{Type: api.ErrTypeValidation, Message: "Rate limit exceeded. Please try again later."},
		chatErr:   &api.ClientError{Type: api.ErrTypeValidation, Message: "Rate limit exceeded. Please try again later."},
	}
	h := newHarness(backend)

	if err := h.coord.Submit(context.Background(), "one more", nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	last := h.store.Snapshot()[1]
	if last.State != model.StateError {
		t.Errorf("State = %v, want error", last.State)
	}
	if last.Text != "Rate limit exceeded. Please try again later." {
		t.Errorf("diagnostic = %q, want backend's own message", last.Text)
	}
}

// =============================================================================
// FILE TURNS
// =============================================================================

func TestSubmit_FileOnly(t *testing.T) {
	backend := &fakeBackend{
		uploadResp: &api.UploadResponse{Response: "Got your resume.", SessionID: "sess_up"},
	}
	h := newHarness(backend)
	file := makeFile(t, "resume.pdf", "%PDF-1.4 body")

	if err := h.coord.Submit(context.Background(), "", file); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	msgs := h.store.Snapshot()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Attachment == nil || msgs[0].Attachment.Name != "resume.pdf" {
		t.Errorf("user message lacks attachment: %+v", msgs[0])
	}
	if msgs[1].State != model.StateComplete || msgs[1].Text != "Got your resume." {
		t.Errorf("assistant message = %+v", msgs[1])
	}
	if h.session.ID() != "sess_up" {
		t.Errorf("session id = %q, want 'sess_up'", h.session.ID())
	}
	if h.status.calls != 1 {
		t.Errorf("quota refreshed %d times, want 1", h.status.calls)
	}
}

func TestSubmit_FileAndText(t *testing.T) {
	backend := &fakeBackend{
		uploadResp:   &api.UploadResponse{Response: "Parsed the file."},
		streamChunks: []string{"Answer ", "about ", "the file."},
	}
	h := newHarness(backend)
	file := makeFile(t, "resume.docx", "doc bytes")

	if err := h.coord.Submit(context.Background(), "What do you think?", file); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	msgs := h.store.Snapshot()
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want user + file reply + text reply", len(msgs))
	}

	// File response settles first, text response second, matching the
	// two-request ordering.
	if msgs[1].Text != "Parsed the file." || msgs[1].State != model.StateComplete {
		t.Errorf("file reply = %+v", msgs[1])
	}
	if msgs[2].Text != "Answer about the file." || msgs[2].State != model.StateComplete {
		t.Errorf("text reply = %+v", msgs[2])
	}
	if h.status.calls != 1 {
		t.Errorf("quota refreshed %d times for combined turn, want 1", h.status.calls)
	}
}

func TestSubmit_UploadFailureSkipsTextTurn(t *testing.T) {
	backend := &fakeBackend{
		uploadErr:    &api.ClientError{Type: api.ErrTypeServer, Message: "backend error: 500"},
		streamChunks: []string{"never sent"},
	}
	h := newHarness(backend)
	file := makeFile(t, "resume.txt", "text")

	if err := h.coord.Submit(context.Background(), "and my question", file); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if backend.streamCalls != 0 {
		t.Error("text turn should not run after the file turn failed")
	}

	msgs := h.store.Snapshot()
	if msgs[1].State != model.StateError {
		t.Errorf("file reply state = %v, want error", msgs[1].State)
	}
	if h.status.calls != 0 {
		t.Errorf("failed turn refreshed quota %d times, want 0", h.status.calls)
	}
}

// =============================================================================
// RESET AND BUSY
// =============================================================================

func TestSubmit_BusyRejected(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{}
	h := newHarness(backend)

	// A stream that blocks until released keeps the first turn in flight.
	blockingStream := api.NewChatStream(&blockingReader{release: release}, "")
	h.coord.backend = &staticStreamBackend{stream: blockingStream}

	done := make(chan error, 1)
	go func() {
		done <- h.coord.Submit(context.Background(), "slow one", nil)
	}()

	waitForBusy(t, h.coord)

	if err := h.coord.Submit(context.Background(), "second", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
}

func TestReset_AbandonsInFlightTurn(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(&fakeBackend{})
	blockingStream := api.NewChatStream(&blockingReader{release: release}, "")
	h.coord.backend = &staticStreamBackend{stream: blockingStream}

	done := make(chan error, 1)
	go func() {
		done <- h.coord.Submit(context.Background(), "doomed", nil)
	}()

	waitForBusy(t, h.coord)
	h.coord.Reset()
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("Submit after Reset errored: %v", err)
	}
	if h.store.Len() != 0 {
		t.Errorf("store has %d messages after Reset, want 0", h.store.Len())
	}
}

func TestNewConversation_FreshIdentity(t *testing.T) {
	backend := &fakeBackend{streamChunks: []string{"reply ", "text ", "here"}, streamSessionID: "sess_old"}
	h := newHarness(backend)

	h.coord.Submit(context.Background(), "first", nil)
	oldID := h.session.ID()

	h.coord.NewConversation()

	if h.store.Len() != 0 {
		t.Error("NewConversation should clear the log")
	}
	if h.session.ID() == oldID {
		t.Error("NewConversation should reset the session id")
	}
}

// blockingReader blocks Read until released, then reports EOF.
type blockingReader struct {
	release chan struct{}
}

func (r *blockingReader) Read(p []byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

func (r *blockingReader) Close() error { return nil }

type staticStreamBackend struct {
	stream *api.ChatStream
}

func (b *staticStreamBackend) ChatStream(ctx context.Context, message, sessionID string) (*api.ChatStream, error) {
	return b.stream, nil
}

func (b *staticStreamBackend) Chat(ctx context.Context, message, sessionID string) (*api.ChatResponse, error) {
	return &api.ChatResponse{Response: "fallback"}, nil
}

func (b *staticStreamBackend) Upload(ctx context.Context, filename string, content io.Reader, sessionID string) (*api.UploadResponse, error) {
	return &api.UploadResponse{Response: "uploaded"}, nil
}

func waitForBusy(t *testing.T, c *Coordinator) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		busy := c.busy
		c.mu.Unlock()
		if busy {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("coordinator never became busy")
}
