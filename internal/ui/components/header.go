// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the resumind TUI.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/resumind-tui/internal/model"
	"github.com/jeranaias/resumind-tui/internal/ui/styles"
)

// =============================================================================
// HEADER
// =============================================================================

// HeaderState carries the values the header displays.
type HeaderState struct {
	Connected bool
	Quota     model.Quota
	ShowQuota bool
}

// lowQuotaThreshold marks when the remaining-message counter turns amber.
const lowQuotaThreshold = 3

// RenderHeader renders the top bar: brand, connection indicator, and the
// remaining-message counter, spread across the full width.
func RenderHeader(theme *styles.Theme, width int, state HeaderState) string {
	left := theme.HeaderBrand.Render("resumind") + " " +
		theme.HeaderTitle.Render("· resume assistant")

	var parts []string
	if state.Connected {
		parts = append(parts, theme.ConnectionUp.Render(styles.StatusIndicators.Active+" connected"))
	} else {
		parts = append(parts, theme.ConnectionDown.Render(styles.StatusIndicators.Error+" offline"))
	}
	if state.ShowQuota && state.Quota.Known() {
		parts = append(parts, renderQuota(theme, state.Quota))
	}
	right := lipgloss.JoinHorizontal(lipgloss.Center, joinWithSeparator(theme, parts)...)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return theme.Header.Width(width).Render(line)
}

// renderQuota formats the remaining-message counter with severity coloring.
func renderQuota(theme *styles.Theme, q model.Quota) string {
	text := fmt.Sprintf("Remaining free messages: %d/%d", q.Remaining, q.Total)
	switch {
	case q.Exhausted():
		return theme.QuotaExhausted.Render(text)
	case q.Remaining <= lowQuotaThreshold:
		return theme.QuotaLow.Render(text)
	default:
		return theme.QuotaNormal.Render(text)
	}
}

func joinWithSeparator(theme *styles.Theme, parts []string) []string {
	if len(parts) <= 1 {
		return parts
	}
	sep := theme.QuotaNormal.Render("  |  ")
	out := make([]string, 0, len(parts)*2-1)
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, p)
	}
	return out
}

// RenderOfflineBanner renders the connection-failure banner shown above the
// input when the backend cannot be reached.
func RenderOfflineBanner(theme *styles.Theme, width int) string {
	msg := "Cannot reach the resumind backend. Check that the server is running, then press ctrl+r to retry."
	return theme.Banner.Width(width - 2).Render(msg)
}
