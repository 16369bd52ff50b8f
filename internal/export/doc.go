// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to shareable files.
//
// Three formats: self-contained HTML with embedded CSS and a theme
// toggle, Markdown, and raw JSON. Reasoning traces, provider badges, and
// citation sources survive the export; failed exchanges are marked as
// such rather than dropped.
package export
