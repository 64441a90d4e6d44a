// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and non-TUI command handlers
// for resumind: status probes, archive listing and export, version info.
// The TUI itself lives in internal/ui and is launched from main.
package cli
