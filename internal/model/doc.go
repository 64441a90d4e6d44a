// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages,
// sessions and quotas.
//
// # Key Types
//
//   - Message: a single conversation entry with a delivery lifecycle
//   - DeliveryState: pending -> streaming -> complete | error
//   - Store: the ordered, mutable conversation log (arena + index)
//   - Patch: a scoped mutation applied to a message by id
//   - Quota: backend-enforced remaining-message allowance
//   - Session: the opaque token correlating a client with backend state
//
// # Ownership
//
// Store exclusively owns the message sequence. Producers (the delivery
// controller, the typing simulator, the exchange coordinator) hold message
// ids, never message copies, and mutate through Update. Patches are merged
// under a single mutex so the last call always wins deterministically in
// arrival order.
package model
