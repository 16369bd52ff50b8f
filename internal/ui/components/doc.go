// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable visual components for the flap-tui
// chat view: syntax-highlighted code blocks, the loading spinner, and the
// bottom status bar.
package components
