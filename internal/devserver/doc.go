// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver provides a local stand-in for the resumind backend.
//
// Endpoints:
//   - GET  /api/health            - Reachability probe
//   - POST /api/chat-stream       - Chunked plain-text chat reply
//   - POST /api/chat              - Non-streaming chat reply (fallback)
//   - POST /api/upload/pdf        - Resume upload (multipart)
//   - GET  /api/rate-limit/status - Remaining message quota
//   - POST /api/feedback          - Feedback submission
//
// Replies are canned. The server tracks a per-session message quota so the
// client's rate-limit handling can be exercised without the real backend.
package devserver
