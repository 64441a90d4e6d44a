// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sync"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello", nil)

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want 'user'", msg.Role)
	}
	if msg.Text != "Hello" {
		t.Errorf("Text = %q, want 'Hello'", msg.Text)
	}
	if msg.State != StateComplete {
		t.Errorf("State = %v, want complete", msg.State)
	}
}

func TestNewUserMessageWithAttachment(t *testing.T) {
	att := &Attachment{Name: "resume.pdf", SizeBytes: 2048}
	msg := NewUserMessage("", att)

	if msg.Attachment == nil || msg.Attachment.Name != "resume.pdf" {
		t.Errorf("Attachment not captured: %+v", msg.Attachment)
	}
	if msg.IsEmpty() {
		t.Error("message with attachment should not be empty")
	}
}

func TestNewAssistantPlaceholder(t *testing.T) {
	msg := NewAssistantPlaceholder()

	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want 'assistant'", msg.Role)
	}
	if msg.State != StatePending {
		t.Errorf("State = %v, want pending", msg.State)
	}
	if msg.Text != "" {
		t.Errorf("Text = %q, want empty", msg.Text)
	}
}

func TestDeliveryState_Settled(t *testing.T) {
	tests := []struct {
		state DeliveryState
		want  bool
	}{
		{StatePending, false},
		{StateStreaming, false},
		{StateComplete, true},
		{StateError, true},
	}

	for _, tc := range tests {
		if got := tc.state.Settled(); got != tc.want {
			t.Errorf("%v.Settled() = %v, want %v", tc.state, got, tc.want)
		}
	}
}

func TestQuota(t *testing.T) {
	var q Quota
	if q.Known() {
		t.Error("zero quota should not be known")
	}

	q = Quota{Remaining: 0, Total: 15}
	if !q.Known() || !q.Exhausted() {
		t.Errorf("quota %+v: Known=%v Exhausted=%v", q, q.Known(), q.Exhausted())
	}
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestStore_AppendAssignsMonotonicIDs(t *testing.T) {
	s := NewStore()

	id1 := s.Append(NewUserMessage("one", nil))
	id2 := s.Append(NewAssistantPlaceholder())
	id3 := s.Append(NewUserMessage("three", nil))

	if id1 >= id2 || id2 >= id3 {
		t.Errorf("ids not monotonic: %d, %d, %d", id1, id2, id3)
	}

	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("Snapshot len = %d, want 3", len(snap))
	}
	if snap[0].Text != "one" || snap[2].Text != "three" {
		t.Error("snapshot order does not match insertion order")
	}
}

func TestStore_UpdateMergesPatch(t *testing.T) {
	s := NewStore()
	id := s.Append(NewAssistantPlaceholder())

	if !s.Update(id, TextPatch("partial", StateStreaming)) {
		t.Fatal("Update returned false for known id")
	}

	msg, ok := s.Get(id)
	if !ok {
		t.Fatal("Get failed")
	}
	if msg.Text != "partial" || msg.State != StateStreaming {
		t.Errorf("after patch: Text=%q State=%v", msg.Text, msg.State)
	}

	// A patch with only state set must not clobber text.
	state := StateComplete
	s.Update(id, Patch{State: &state})
	msg, _ = s.Get(id)
	if msg.Text != "partial" {
		t.Errorf("state-only patch clobbered text: %q", msg.Text)
	}
	if msg.State != StateComplete {
		t.Errorf("State = %v, want complete", msg.State)
	}
}

func TestStore_LastPatchWins(t *testing.T) {
	s := NewStore()
	id := s.Append(NewAssistantPlaceholder())

	s.Update(id, TextPatch("Hi ", StateStreaming))
	s.Update(id, TextPatch("Hi there!", StateStreaming))
	s.Update(id, TextPatch("Hi there!", StateComplete))

	msg, _ := s.Get(id)
	if msg.Text != "Hi there!" {
		t.Errorf("Text = %q, want 'Hi there!'", msg.Text)
	}
	if msg.State != StateComplete {
		t.Errorf("State = %v, want complete", msg.State)
	}
}

func TestStore_UpdateUnknownID(t *testing.T) {
	s := NewStore()
	if s.Update(999, TextPatch("ghost", StateStreaming)) {
		t.Error("Update of unknown id should return false")
	}
	if s.Len() != 0 {
		t.Error("failed update must not create entries")
	}
}

func TestStore_SettledMessagesAreImmutable(t *testing.T) {
	s := NewStore()

	done := s.Append(NewAssistantPlaceholder())
	s.Update(done, TextPatch("final answer", StateComplete))
	if s.Update(done, TextPatch("late chunk", StateStreaming)) {
		t.Error("patch against a completed message should be discarded")
	}
	msg, _ := s.Get(done)
	if msg.Text != "final answer" || msg.State != StateComplete {
		t.Errorf("completed message mutated: %+v", msg)
	}

	failed := s.Append(NewAssistantPlaceholder())
	s.Update(failed, ErrorPatch("Connection error: backend unreachable"))
	if s.Update(failed, TextPatch("retry text", StateStreaming)) {
		t.Error("patch against an errored message should be discarded")
	}
	msg, _ = s.Get(failed)
	if msg.State != StateError {
		t.Errorf("errored message mutated: %+v", msg)
	}
}

func TestStore_ClearDiscardsLateWrites(t *testing.T) {
	s := NewStore()
	id := s.Append(NewAssistantPlaceholder())
	gen := s.Generation()

	s.Clear()

	if s.Generation() == gen {
		t.Error("Clear must bump the generation")
	}

	// A producer holding the old id must find nothing to mutate.
	if s.Update(id, TextPatch("late chunk", StateStreaming)) {
		t.Error("update after Clear should be discarded")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", s.Len())
	}

	// Ids are not reused across clears.
	newID := s.Append(NewUserMessage("fresh", nil))
	if newID == id {
		t.Error("message id reused after Clear")
	}
}

func TestStore_Unsettled(t *testing.T) {
	s := NewStore()
	s.Append(NewUserMessage("q", nil))
	a1 := s.Append(NewAssistantPlaceholder())
	a2 := s.Append(NewAssistantPlaceholder())

	if n := len(s.Unsettled()); n != 2 {
		t.Fatalf("Unsettled = %d, want 2", n)
	}

	s.Update(a1, TextPatch("done", StateComplete))
	s.Update(a2, ErrorPatch("boom"))

	if n := len(s.Unsettled()); n != 0 {
		t.Errorf("Unsettled = %d after settling, want 0", n)
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s := NewStore()
	id := s.Append(NewAssistantPlaceholder())

	// Two producers never drive the same id in practice, but the store
	// itself must stay consistent under concurrent patching.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(id, TextPatch("text", StateStreaming))
		}()
	}
	wg.Wait()

	msg, _ := s.Get(id)
	if msg.Text != "text" || msg.State != StateStreaming {
		t.Errorf("after concurrent updates: %+v", msg)
	}
}

func TestErrorPatch(t *testing.T) {
	s := NewStore()
	id := s.Append(NewAssistantPlaceholder())

	s.Update(id, ErrorPatch("Connection error: backend unreachable"))

	msg, _ := s.Get(id)
	if msg.State != StateError {
		t.Errorf("State = %v, want error", msg.State)
	}
	if msg.ErrText == "" || msg.Text == "" {
		t.Error("error patch must set both text and diagnostic")
	}
}
