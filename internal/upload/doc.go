// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload validates resume files before they are sent to the backend.
//
// Validation is intentionally shallow: extension allow-list plus a size cap,
// matching the backend's own rules so rejections happen locally and
// instantly. Content inspection stays on the server, which has the actual
// parsers.
package upload
