// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// LAYOUT
// =============================================================================

// LayoutMode describes how much horizontal space the terminal offers.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 80 cols
	LayoutNormal                   // 80-119 cols
	LayoutWide                     // >= 120 cols
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds every style the chat view renders with. A Theme is sized to
// the terminal via SetSize and rebuilt when the window changes.
type Theme struct {
	Width  int
	Height int
	Layout LayoutMode

	// Chrome.
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	Spinner   lipgloss.Style
	ErrorBox  lipgloss.Style

	// Message bubbles.
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	Timestamp       lipgloss.Style

	// Assistant side panels.
	ProviderBadge   lipgloss.Style
	Reasoning       lipgloss.Style
	ReasoningTitle  lipgloss.Style
	Sources         lipgloss.Style
	SourceURL       lipgloss.Style
	SearchIndicator lipgloss.Style
	SearchComplete  lipgloss.Style

	// Input area.
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	InputText      lipgloss.Style

	// Help / hints.
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// NewTheme builds a theme for the current terminal. Background detection
// drives the adaptive color choices made in colors.go.
func NewTheme() *Theme {
	lipgloss.SetColorProfile(termenv.ColorProfile())
	lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())

	t := &Theme{Width: 80, Height: 24}
	t.initStyles()
	return t
}

// SetSize updates the theme for a new terminal size and recomputes the
// width-dependent styles.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
	switch {
	case width < 80:
		t.Layout = LayoutNarrow
	case width < 120:
		t.Layout = LayoutNormal
	default:
		t.Layout = LayoutWide
	}
	t.initStyles()
}

// BubbleWidth returns the maximum content width for a message bubble.
func (t *Theme) BubbleWidth() int {
	w := t.Width - 8
	if t.Layout == LayoutWide {
		w = t.Width * 3 / 4
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (t *Theme) initStyles() {
	bubbleWidth := t.BubbleWidth()

	t.Header = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1).
		Width(t.Width)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Cyan)

	t.ErrorBox = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1).
		MaxWidth(bubbleWidth)

	t.UserBubble = lipgloss.NewStyle().
		Background(UserBubbleBg).
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MaxWidth(bubbleWidth)

	t.AssistantBubble = lipgloss.NewStyle().
		Background(AssistantBubbleBg).
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MaxWidth(bubbleWidth)

	t.UserLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ProviderBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Padding(0, 1).
		Bold(true)

	t.Reasoning = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Overlay).
		PaddingLeft(1).
		MaxWidth(bubbleWidth)

	t.ReasoningTitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.Sources = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingLeft(2)

	t.SourceURL = lipgloss.NewStyle().
		Foreground(Cyan).
		Underline(true)

	t.SearchIndicator = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.SearchComplete = lipgloss.NewStyle().
		Foreground(Emerald).
		Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1).
		Width(t.Width - 2)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}
