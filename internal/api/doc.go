// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the Resumind
// assistant backend.
//
// # Endpoints
//
//   - GET  /api/health            - reachability probe
//   - POST /api/chat-stream       - chunked plain-text reply stream
//   - POST /api/chat              - full-reply JSON fallback
//   - POST /api/upload/pdf        - multipart resume upload
//   - GET  /api/rate-limit/status - remaining-message quota
//   - POST /api/feedback          - free-form user feedback
//
// # Error Taxonomy
//
// Every failure surfaces as a *ClientError carrying one of five categories:
// connection (transport-level, backend unreachable), server (5xx), validation
// (4xx, carries the backend's own message), stream (connection established
// but the body broke mid-read), and unknown. The chat view renders a distinct
// diagnostic per category, so classification happens here, once, at the edge.
package api
