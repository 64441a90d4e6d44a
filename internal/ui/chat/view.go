// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the resumind TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/resumind-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Starting resumind..."
	}
	if m.quitting {
		return ""
	}

	var sections []string

	sections = append(sections, components.RenderHeader(m.theme, m.width, components.HeaderState{
		Connected: m.connected,
		Quota:     m.tracker.Current(),
		ShowQuota: m.cfg.UI.ShowQuota,
	}))

	if m.infoView != "" {
		sections = append(sections, m.renderInfoOverlay())
	} else {
		sections = append(sections, m.viewport.View())
	}

	if m.showOfflineBanner() {
		sections = append(sections, components.RenderOfflineBanner(m.theme, m.width))
	}

	if m.pendingFile != nil {
		sections = append(sections, m.theme.PendingFile.Render(
			" [file] "+m.pendingFile.Name+" ("+m.pendingFile.DisplaySize()+") ready to send - /detach to drop"))
	}

	sections = append(sections, m.renderInput())
	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// showOfflineBanner reports whether the connection-failure banner is due.
func (m Model) showOfflineBanner() bool {
	return m.healthProbed && !m.connected
}

// renderInput renders the bordered input line.
func (m Model) renderInput() string {
	prompt := m.theme.InputPrompt.Render("> ")
	return m.theme.InputContainer.Width(m.width - 2).Render(prompt + m.input.View())
}

// renderStatusBar renders the bottom hint bar.
func (m Model) renderStatusBar() string {
	shortcuts := components.DefaultShortcuts
	if m.busy {
		shortcuts = components.BusyShortcuts
	}
	return components.RenderStatusBar(m.theme, m.width, m.notice, shortcuts)
}

// renderInfoOverlay renders /help and /sessions output in the viewport
// area, padded to the same height so the layout does not jump.
func (m Model) renderInfoOverlay() string {
	lines := strings.Split(m.infoView, "\n")
	height := m.viewport.Height
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return m.theme.MessageBody.Render(strings.Join(lines, "\n"))
}

// chromeHeight is the number of rows used by everything except the
// viewport: header, input, and status bar. Banner and pending-file rows
// appear and disappear; the viewport absorbs the difference on resize
// only, which keeps the layout math simple.
func (m Model) chromeHeight() int {
	return 5
}
