// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns conversation messages into HTML fragments for the
// live chat view.
//
// Assistant content goes through the streaming-safe markdown formatter;
// user content is escaped verbatim. Side-channel data (provider badge,
// reasoning trace, citation sources, search status) renders as chrome
// around the message body. Rendering is a pure function of the message
// state, so re-rendering a message mid-stream always extends the previous
// output rather than rewriting it.
package render
