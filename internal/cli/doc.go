// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface of flap: one-shot
// questions, a line-based REPL, credential management, conversation
// export, and server status.
package cli
