// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the resumind TUI.
//
// Colors are defined once as lipgloss.AdaptiveColor pairs (colors.go) and
// composed into a Theme of ready-to-use styles (theme.go). The configured
// theme name ("dark" or "light") decides which side of each adaptive pair
// is used; everything else keys off the Theme so components never build
// ad-hoc styles.
package styles
