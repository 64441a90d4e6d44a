// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange coordinates a full conversation turn.
//
// A turn runs: append user message and assistant placeholder(s), issue the
// backend request(s), hand the reply to the delivery layer, settle every
// placeholder as complete or error, then refresh the quota once. The
// coordinator is the only place that sequences these side effects; the
// packages it composes (session, quota, delivery, api) are each unaware of
// the others.
//
// Turn phases: Idle -> Sending -> AwaitingFirstByte -> Streaming or
// TypingReveal -> Settled. Errors never propagate to the caller as turn
// failures - the conversation log itself is the error channel, and a failed
// turn settles its placeholder with a classified diagnostic.
package exchange
