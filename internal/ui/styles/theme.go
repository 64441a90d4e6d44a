// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the resumind TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderBrand lipgloss.Style

	// ==========================================================================
	// CONNECTION AND QUOTA STYLES
	// ==========================================================================

	ConnectionUp   lipgloss.Style
	ConnectionDown lipgloss.Style
	QuotaNormal    lipgloss.Style
	QuotaLow       lipgloss.Style
	QuotaExhausted lipgloss.Style
	Banner         lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	MessageBody    lipgloss.Style
	MessageError   lipgloss.Style
	Attachment     lipgloss.Style
	Timestamp      lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	PendingFile    lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusNotice lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// SPINNER STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
}

// NewTheme builds the theme for the given UI theme name ("dark" or "light").
// The name forces the lipgloss background assumption so a config choice wins
// over terminal detection.
func NewTheme(name string) *Theme {
	isDark := name != "light"
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)
	t.HeaderBrand = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true)

	t.ConnectionUp = lipgloss.NewStyle().Foreground(Emerald)
	t.ConnectionDown = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.QuotaNormal = lipgloss.NewStyle().Foreground(TextSecondary)
	t.QuotaLow = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.QuotaExhausted = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Banner = lipgloss.NewStyle().
		Foreground(Rose).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.UserLabel = lipgloss.NewStyle().Foreground(UserFg).Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(AssistantFg).Bold(true)
	t.MessageBody = lipgloss.NewStyle().Foreground(TextPrimary)
	t.MessageError = lipgloss.NewStyle().Foreground(Rose)
	t.Attachment = lipgloss.NewStyle().Foreground(Cyan)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.PendingFile = lipgloss.NewStyle().Foreground(Cyan)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusNotice = lipgloss.NewStyle().Foreground(Amber)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().Foreground(Indigo)
	t.ThinkingText = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	return t
}
