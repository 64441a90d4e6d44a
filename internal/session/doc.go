// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the client's session identity.
//
// The session id is an opaque token correlating this client with backend
// conversation state and quota. The client synthesizes one locally on first
// run, persists it, and adopts the backend's canonical id whenever the
// X-Session-ID header disagrees. Adoption is idempotent: re-adopting the
// current id touches nothing, so a chatty backend cannot cause write storms
// against the persistence layer.
//
// Persistence is best-effort. When the store is unavailable the manager
// degrades to an in-memory id and the conversation continues; identity just
// will not survive a restart.
package session
