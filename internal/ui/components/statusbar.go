// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/flap-tui/internal/ui/styles"
	"github.com/morganforge/flap-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// Status is the connection/activity state shown at the left of the bar.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusSearching
	StatusError
	StatusOffline
)

// String returns the display label for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming"
	case StatusSearching:
		return "Searching"
	case StatusError:
		return "Error"
	case StatusOffline:
		return "Offline"
	default:
		return "Unknown"
	}
}

func (s Status) color() lipgloss.AdaptiveColor {
	switch s {
	case StatusStreaming, StatusSearching:
		return styles.Amber
	case StatusError, StatusOffline:
		return styles.Rose
	default:
		return styles.Emerald
	}
}

// StatusBar is the single-line bar at the bottom of the chat view.
type StatusBar struct {
	Width    int
	Status   Status
	Provider string
	Search   bool
	Turns    int
}

// View renders the bar at the configured width.
func (b StatusBar) View() string {
	dot := lipgloss.NewStyle().Foreground(b.Status.color()).Render("*")
	left := dot + " " + b.Status.String()

	var parts []string
	if b.Provider != "" {
		parts = append(parts, "via "+b.Provider)
	}
	if b.Search {
		parts = append(parts, "search on")
	}
	if b.Turns > 0 {
		parts = append(parts, pluralTurns(b.Turns))
	}
	right := strings.Join(parts, "  ")

	gap := b.Width - util.StringWidth(left) - util.StringWidth(right) - 2
	if gap < 1 {
		gap = 1
	}

	line := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Background(styles.SurfaceDim).
		Padding(0, 1).
		Width(b.Width).
		Render(line)
}

func pluralTurns(n int) string {
	if n == 1 {
		return "1 turn"
	}
	return strconv.Itoa(n) + " turns"
}
