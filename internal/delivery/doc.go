// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package delivery turns backend replies into incremental message updates.
//
// Two reveal mechanisms exist and exactly one drives a given message:
//
//   - Raw streaming: chunks are appended to the message as they arrive
//     from the network. Used when the backend genuinely streams.
//   - Typing simulation: the full reply is revealed word by word on a
//     fixed cadence. Used for replies that arrive at once, where raw
//     chunk updates would look like a sudden dump or a two-step burst.
//
// The controller classifies each stream after at most two reads and picks
// the mechanism. Short replies are always typed: a stream of one or two
// chunks looks identical to the user either way, and a controlled cadence
// reads better than bursty updates.
package delivery
