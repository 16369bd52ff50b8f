// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations to a local SQLite database.
//
// The store keeps full message history including reasoning traces and
// citation sources, keyed by the conversation's local id. Saving is
// transactional: a conversation's row and its messages are replaced
// together, so a crash mid-save never leaves a half-written history.
package storage
