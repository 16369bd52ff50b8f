// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the color palette and lipgloss styles for the
// flap-tui terminal interface. Colors are adaptive and degrade gracefully
// on terminals without truecolor support.
package styles
