// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the resumind TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/resumind-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Shortcut is a key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are the hints shown while idle.
var DefaultShortcuts = []Shortcut{
	{"enter", "send"},
	{"/help", "commands"},
	{"ctrl+c", "quit"},
}

// BusyShortcuts are the hints shown while a turn is in flight.
var BusyShortcuts = []Shortcut{
	{"esc", "cancel"},
	{"ctrl+c", "quit"},
}

// RenderStatusBar renders the bottom bar: a transient notice on the left
// (when set) and key hints on the right.
func RenderStatusBar(theme *styles.Theme, width int, notice string, shortcuts []Shortcut) string {
	hints := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		hints = append(hints, theme.ShortcutKey.Render(s.Key)+" "+theme.ShortcutDesc.Render(s.Desc))
	}
	right := strings.Join(hints, "  ")

	left := ""
	if notice != "" {
		left = theme.StatusNotice.Render(notice)
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return theme.StatusBar.Width(width).Render(line)
}
