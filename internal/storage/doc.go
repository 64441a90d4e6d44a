// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local persistence for resumind TUI.
//
// A single SQLite database (default ~/.resumind/resumind.db) holds two
// things: small key/value client state (the persisted session id lives
// there) and an archive of finished conversation transcripts. The pure Go
// driver keeps the binary dependency-free - no cgo, no system sqlite.
package storage
