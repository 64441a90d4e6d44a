// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for resumind.
//
// Precedence, lowest to highest:
//   - Built-in defaults
//   - ~/.resumind/config.toml
//   - RESUMIND_* environment variables
//
// The cadence knobs under [delivery] are tunables, not correctness
// settings; the defaults match the web client's reveal timing. A watcher
// (see watcher.go) picks up edits to the config file while the app runs.
package config
