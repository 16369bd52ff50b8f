// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sse decodes the Flap backend's event-stream framing.
//
// The backend emits newline-delimited frames of the form "data: <json>".
// Chunks arrive at arbitrary byte boundaries - a single read may contain
// zero, one, or many complete lines and may end mid-line - so the decoder
// keeps a carry-over buffer of the unterminated tail between feeds.
//
// The decoder is deliberately tolerant: lines without the data prefix
// (keep-alives, comments) are ignored, and a frame whose JSON fails to
// parse is logged and skipped rather than failing the stream. Terminal
// semantics (done/error fields) belong to the session controller, not here.
package sse
