// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quota tracks the backend-enforced message allowance.
//
// The allowance is display-only: the backend is the sole enforcer, and the
// client never decrements locally. The tracker refreshes after each
// successful turn, throttles refreshes so quick exchanges cannot hammer
// the status endpoint, and keeps the last known value when a refresh fails.
package quota
