// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown converts the markdown subset emitted by the Flap backend
// into HTML suitable for direct rendering.
//
// The formatter is built for streaming: it is a pure function of its full
// input, so it can be re-run on every content delta and the same prefix
// always yields the same HTML. No state survives between calls.
//
// Supported subset:
//   - paragraphs with soft-wrap line joining
//   - headings (# ## ###, mapped to h3-h5 below the app chrome)
//   - unordered lists (-, *, or a bullet glyph)
//   - ordered lists (N. prefix; source numbers are discarded)
//   - fenced code blocks (``` with optional language tag)
//   - bold, italic, inline code, and [text](url) links
//
// Everything is HTML-escaped before any markup substitution, so raw angle
// brackets or ampersands in model output can never become live markup.
package markdown
