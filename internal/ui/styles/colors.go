// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLOR PALETTE
// =============================================================================

// Accent colors. The Light value is used on light terminal backgrounds,
// Dark on dark backgrounds.
var (
	Purple  = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#bb9af7"}
	Cyan    = lipgloss.AdaptiveColor{Light: "#0891b2", Dark: "#7dcfff"}
	Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#9ece6a"}
	Rose    = lipgloss.AdaptiveColor{Light: "#e11d48", Dark: "#f7768e"}
	Amber   = lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#e0af68"}
)

// Surface colors for backgrounds and containers.
var (
	Surface    = lipgloss.AdaptiveColor{Light: "#f8fafc", Dark: "#1a1b26"}
	SurfaceDim = lipgloss.AdaptiveColor{Light: "#f1f5f9", Dark: "#16161e"}
	Overlay    = lipgloss.AdaptiveColor{Light: "#cbd5e1", Dark: "#414868"}
	OverlayDim = lipgloss.AdaptiveColor{Light: "#e2e8f0", Dark: "#2f3549"}
)

// Text colors.
var (
	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1e293b", Dark: "#c0caf5"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#475569", Dark: "#9aa5ce"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#565f89"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#f8fafc", Dark: "#1a1b26"}
)

// Message bubble colors.
var (
	UserBubbleBg     = lipgloss.AdaptiveColor{Light: "#ede9fe", Dark: "#2b2640"}
	UserBubbleBorder = Purple

	AssistantBubbleBg     = lipgloss.AdaptiveColor{Light: "#ecfeff", Dark: "#1f2335"}
	AssistantBubbleBorder = Cyan
)
