// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the resumind TUI.
//
// Components are pure render functions (or small stateful renderers) that
// take the shared Theme and produce strings for the chat view to compose.
// They hold no Bubble Tea state of their own.
package components
