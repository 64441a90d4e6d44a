// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package delivery

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jeranaias/resumind-tui/internal/api"
	"github.com/jeranaias/resumind-tui/internal/model"
)

// chunkedReader yields one predefined chunk per Read call, so tests
// control exactly where chunk boundaries fall.
type chunkedReader struct {
	chunks []string
	pos    int
	err    error // returned after the chunks are exhausted (nil = io.EOF)
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.chunks) {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[r.pos])
	r.pos++
	return n, nil
}

func (r *chunkedReader) Close() error { return nil }

func fastConfig() Config {
	return Config{
		WordDelay:          time.Microsecond,
		StreamWordDelay:    time.Microsecond,
		UploadWordDelay:    time.Microsecond,
		ShortWordThreshold: ShortWordThreshold,
	}
}

func newStream(chunks []string, finalErr error) *api.ChatStream {
	return api.NewChatStream(&chunkedReader{chunks: chunks, err: finalErr}, "")
}

// =============================================================================
// TYPING SIMULATOR TESTS
// =============================================================================

func TestReveal_RoundTrip(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	sim := NewSimulator(store)

	// Odd whitespace that a word-join would normalize.
	original := "Hello   world\nwith  formatting"
	if err := sim.Reveal(context.Background(), id, original, time.Microsecond); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}

	msg, _ := store.Get(id)
	if msg.Text != original {
		t.Errorf("final text = %q, want original byte-for-byte", msg.Text)
	}
	if msg.State != model.StateComplete {
		t.Errorf("State = %v, want complete", msg.State)
	}
}

func TestReveal_Cancelled(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	sim := NewSimulator(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sim.Reveal(ctx, id, "one two three four five", time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	msg, _ := store.Get(id)
	if msg.State == model.StateComplete {
		t.Error("cancelled reveal must not settle the message as complete")
	}
}

func TestReveal_ClearedStoreStopsTicking(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	store.Clear()

	sim := NewSimulator(store)
	done := make(chan error, 1)
	go func() {
		// Long delay: if the reveal kept ticking this would take minutes.
		done <- sim.Reveal(context.Background(), id, "a b c d e f g h", time.Minute)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Reveal into cleared store should discard silently, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Reveal did not abort after its message was cleared")
	}

	if store.Len() != 0 {
		t.Error("reveal resurrected a cleared message")
	}
}

func TestReveal_EmptyText(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	sim := NewSimulator(store)

	if err := sim.Reveal(context.Background(), id, "", time.Microsecond); err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	msg, _ := store.Get(id)
	if msg.State != model.StateComplete {
		t.Errorf("State = %v, want complete", msg.State)
	}
}

// =============================================================================
// STREAM CLASSIFICATION TESTS
// =============================================================================

func TestHandleStream_MultiChunkRaw(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	ctrl := NewController(store, fastConfig())

	// Three chunks keep the stream open past the classification reads.
	stream := newStream([]string{"Hi ", "there, ", "friend!"}, nil)
	text, err := ctrl.HandleStream(context.Background(), id, stream)
	if err != nil {
		t.Fatalf("HandleStream failed: %v", err)
	}
	if text != "Hi there, friend!" {
		t.Errorf("text = %q", text)
	}

	msg, _ := store.Get(id)
	if msg.State != model.StateComplete {
		t.Errorf("State = %v, want complete", msg.State)
	}
	if msg.Text != "Hi there, friend!" {
		t.Errorf("message text = %q", msg.Text)
	}
}

func TestHandleStream_SingleChunkTyped(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	ctrl := NewController(store, fastConfig())

	stream := newStream([]string{"Short answer.  "}, nil)
	text, err := ctrl.HandleStream(context.Background(), id, stream)
	if err != nil {
		t.Fatalf("HandleStream failed: %v", err)
	}
	if text != "Short answer." {
		t.Errorf("text = %q, want trimmed reply", text)
	}

	msg, _ := store.Get(id)
	if msg.State != model.StateComplete || msg.Text != "Short answer." {
		t.Errorf("message = %+v", msg)
	}
}

func TestHandleStream_TwoChunksThenClose(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	ctrl := NewController(store, fastConfig())

	// Stream ends during the second classification read; the reply is
	// short, so the word-count rule routes it through typing.
	stream := newStream([]string{"Hi ", "there!"}, nil)
	text, err := ctrl.HandleStream(context.Background(), id, stream)
	if err != nil {
		t.Fatalf("HandleStream failed: %v", err)
	}
	if text != "Hi there!" {
		t.Errorf("text = %q, want 'Hi there!'", text)
	}

	msg, _ := store.Get(id)
	if msg.State != model.StateComplete || msg.Text != "Hi there!" {
		t.Errorf("message = %+v", msg)
	}
}

func TestHandleStream_EmptyReply(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	ctrl := NewController(store, fastConfig())

	stream := newStream(nil, nil)
	_, err := ctrl.HandleStream(context.Background(), id, stream)
	if api.TypeOf(err) != api.ErrTypeStream {
		t.Errorf("expected stream error for empty reply, got %v", err)
	}
}

func TestHandleStream_MidStreamFailureRevealsPartial(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	ctrl := NewController(store, fastConfig())

	// Connection drops after three chunks; the partial reply is still
	// delivered rather than thrown away.
	stream := newStream([]string{"The first ", "part of ", "an answer "}, errors.New("connection reset"))
	text, err := ctrl.HandleStream(context.Background(), id, stream)
	if err != nil {
		t.Fatalf("partial recovery should not error, got %v", err)
	}
	if text != "The first part of an answer" {
		t.Errorf("text = %q", text)
	}

	msg, _ := store.Get(id)
	if msg.State != model.StateComplete {
		t.Errorf("State = %v, want complete", msg.State)
	}
}

func TestHandleStream_ImmediateFailurePropagates(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	ctrl := NewController(store, fastConfig())

	stream := newStream(nil, errors.New("connection reset"))
	_, err := ctrl.HandleStream(context.Background(), id, stream)
	if err == nil {
		t.Fatal("expected error when the stream fails before any data")
	}

	msg, _ := store.Get(id)
	if msg.State == model.StateComplete {
		t.Error("failed stream must not settle the message as complete")
	}
}

func TestHandleStream_ClearedConversationDiscards(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	ctrl := NewController(store, fastConfig())

	store.Clear()

	stream := newStream([]string{"a ", "b ", "c ", "d "}, nil)
	text, err := ctrl.HandleStream(context.Background(), id, stream)
	if err != nil {
		t.Fatalf("HandleStream errored on cleared store: %v", err)
	}
	if text != "" {
		t.Errorf("cleared turn should yield no text, got %q", text)
	}
	if store.Len() != 0 {
		t.Error("stream resurrected a cleared message")
	}
}

func TestClassifySingle(t *testing.T) {
	ctrl := NewController(model.NewStore(), fastConfig())

	longText := ""
	for i := 0; i < 60; i++ {
		longText += "word "
	}

	tests := []struct {
		name        string
		first       api.Chunk
		second      api.Chunk
		accumulated string
		want        bool
	}{
		{"closed on first read", api.Chunk{Done: true}, api.Chunk{}, "hello", true},
		{"first read carries whole reply", api.Chunk{Text: "hello", Done: true}, api.Chunk{}, "hello", true},
		{"second read empty close", api.Chunk{Text: "hello"}, api.Chunk{Done: true}, "hello", true},
		{"short reply closed in two reads", api.Chunk{Text: "Hi "}, api.Chunk{Text: "there!", Done: true}, "Hi there!", true},
		{"long reply closed in two reads", api.Chunk{Text: "a"}, api.Chunk{Text: "b", Done: true}, longText, false},
		{"stream still open", api.Chunk{Text: "Hi "}, api.Chunk{Text: "there"}, "Hi there", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ctrl.classifySingle(tc.first, tc.second, tc.accumulated); got != tc.want {
				t.Errorf("classifySingle = %v, want %v", got, tc.want)
			}
		})
	}
}

// =============================================================================
// FULL-BODY TESTS
// =============================================================================

func TestHandleFull(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	ctrl := NewController(store, fastConfig())

	text, err := ctrl.HandleFull(context.Background(), id, "  complete reply  ")
	if err != nil {
		t.Fatalf("HandleFull failed: %v", err)
	}
	if text != "complete reply" {
		t.Errorf("text = %q", text)
	}

	msg, _ := store.Get(id)
	if msg.State != model.StateComplete || msg.Text != "complete reply" {
		t.Errorf("message = %+v", msg)
	}
}

func TestHandleFull_EmptyFallbackText(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	ctrl := NewController(store, fastConfig())

	text, err := ctrl.HandleFull(context.Background(), id, "")
	if err != nil {
		t.Fatalf("HandleFull failed: %v", err)
	}
	if text == "" {
		t.Error("empty backend reply should surface the apology text")
	}
}

func TestHandleUpload_DefaultAck(t *testing.T) {
	store := model.NewStore()
	id := store.Append(model.NewAssistantPlaceholder())
	ctrl := NewController(store, fastConfig())

	text, err := ctrl.HandleUpload(context.Background(), id, "")
	if err != nil {
		t.Fatalf("HandleUpload failed: %v", err)
	}
	if text != "File uploaded successfully" {
		t.Errorf("text = %q", text)
	}
}
