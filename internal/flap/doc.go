// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package flap is the HTTP client for the Flap AI chat backend.
//
// The backend exposes three endpoints this client consumes:
//   - POST /api/chat/stream         streaming chat (SSE "data: <json>" frames)
//   - POST /api/chat/stream/search  streaming chat with web search augmentation
//   - POST /api/chat                synchronous fallback
//
// plus GET /health for probes. Every chat request carries the full prior
// conversation as user/assistant turns; the system prompt lives server-side
// and is never sent by the client.
package flap
