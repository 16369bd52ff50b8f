// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/model"
	"github.com/morganforge/flap-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model. Layout: header, viewport, activity line,
// input box, status bar.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()
	activity := m.renderActivity()
	input := m.theme.InputContainer.Render(m.input.View())
	status := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		activity,
		input,
		status,
	)
}

func (m *Model) renderHeader() string {
	title := "Flap AI"
	conv := m.controller.Conversation()
	if conv.Title != "" {
		title += " - " + conv.Title
	}
	return m.theme.Header.Render(title)
}

// renderActivity is the single line between viewport and input: spinner
// while waiting, the last error after a failure, otherwise a transient
// status note.
func (m *Model) renderActivity() string {
	if s := m.spinner.View(); s != "" {
		return " " + s
	}
	if m.lastError != "" {
		return " " + m.theme.ErrorBox.UnsetBorderStyle().Render(m.lastError)
	}
	if m.statusMsg != "" {
		return " " + m.theme.HelpDesc.Render(m.statusMsg)
	}
	return ""
}

func (m *Model) renderStatusBar() string {
	bar := components.StatusBar{
		Width:  m.width,
		Status: m.currentStatus(),
		Search: m.searchEnabled,
		Turns:  m.controller.Conversation().Len(),
	}
	if last := m.controller.Conversation().Last(); last != nil && last.Role == model.RoleAssistant {
		bar.Provider = last.Provider
	}
	return bar.View()
}

func (m *Model) currentStatus() components.Status {
	switch {
	case m.searchStatus == flap.SearchStatusSearching && m.streaming:
		return components.StatusSearching
	case m.streaming:
		return components.StatusStreaming
	case m.lastError != "":
		return components.StatusError
	default:
		return components.StatusReady
	}
}
