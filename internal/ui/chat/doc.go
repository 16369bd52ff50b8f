// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view: a Bubble Tea model
// wrapping a session controller, with a scrollback viewport, an input line,
// and a status bar. Streaming redraws are throttled to keep the terminal
// smooth while tokens arrive.
package chat
