// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// A Message owns the accumulating answer text, reasoning trace, provider
// tag, and citation sources for one turn. A Conversation owns the ordered
// message history and the server-assigned conversation identifier, which is
// adopted exactly once per session.
package model
