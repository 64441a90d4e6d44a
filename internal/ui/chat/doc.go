// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the resumind TUI.
//
// The Bubble Tea model here owns the screen: header, scrollback viewport,
// input line, and status bar. It does not own the conversation - that
// lives in the message store, written by the exchange coordinator off the
// UI goroutine. The view polls the store on a short tick while a turn is
// in flight, which is also what makes the word-by-word typing reveal
// visible: each tick re-renders whatever text the delivery layer has
// published so far.
//
// Slash commands (/attach, /feedback, /new, /export, ...) are dispatched
// through a handler registry in commands.go.
package chat
