// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the resumind-tui application.
//
// The package is intentionally tiny: atomic file writes for persisted state
// and rune-safe string helpers used by the chat view. Anything with domain
// knowledge belongs in its own package, not here.
package util
