// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/model"
	"github.com/morganforge/flap-tui/internal/ui/components"
	"github.com/morganforge/flap-tui/internal/ui/styles"
)

// =============================================================================
// CONVERSATION RENDERING
// =============================================================================

// renderConversation renders the full scrollback for the viewport.
func (m *Model) renderConversation() string {
	conv := m.controller.Conversation()
	if conv.Len() == 0 {
		return m.renderWelcome()
	}

	var b strings.Builder
	for i, msg := range conv.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderWelcome() string {
	title := m.theme.Header.Render("Flap AI")
	hint := m.theme.HelpDesc.Render("Type a message and press Enter. C-s toggles web search.")
	return lipgloss.JoinVertical(lipgloss.Left, "", title, "", hint)
}

// renderMessage renders one chat turn as a bubble with its side panels.
func (m *Model) renderMessage(msg *model.Message) string {
	switch msg.Role {
	case model.RoleUser:
		return m.renderUserMessage(msg)
	default:
		return m.renderAssistantMessage(msg)
	}
}

func (m *Model) renderUserMessage(msg *model.Message) string {
	label := m.theme.UserLabel.Render(msg.Role.DisplayName())
	ts := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	bubble := m.theme.UserBubble.Render(msg.Text())
	return lipgloss.JoinVertical(lipgloss.Left, label+" "+ts, bubble)
}

func (m *Model) renderAssistantMessage(msg *model.Message) string {
	header := m.theme.AssistantLabel.Render(msg.Role.DisplayName())
	if msg.Provider != "" {
		header += " " + m.theme.ProviderBadge.Render(msg.Provider)
	}
	header += " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	parts := []string{header}

	if ind := m.renderSearchIndicator(msg); ind != "" {
		parts = append(parts, ind)
	}

	switch msg.Status {
	case model.StatusPending:
		// The spinner below the viewport covers this state.
	case model.StatusFailed:
		if body := msg.Text(); body != "" {
			parts = append(parts, m.theme.AssistantBubble.Render(m.renderBody(body)))
		}
		parts = append(parts, m.theme.ErrorBox.Render("Failed: "+msg.ErrorText))
	default:
		if body := msg.Text(); body != "" {
			parts = append(parts, m.theme.AssistantBubble.Render(m.renderBody(body)))
		}
	}

	// Reasoning and sources attach only once the turn is settled, so the
	// panels do not reflow on every token.
	if msg.Status.Terminal() {
		if m.showReasoning && msg.Reasoning != "" {
			parts = append(parts, m.renderReasoning(msg.Reasoning))
		}
		if len(msg.Sources) > 0 {
			parts = append(parts, m.renderSources(msg.Sources))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderSearchIndicator shows web-search progress for the in-flight turn.
func (m *Model) renderSearchIndicator(msg *model.Message) string {
	if msg.Status.Terminal() || m.searchStatus == "" {
		return ""
	}
	switch m.searchStatus {
	case flap.SearchStatusSearching:
		if m.searchQuery != "" {
			return m.theme.SearchIndicator.Render(fmt.Sprintf("Searching the web for %q...", m.searchQuery))
		}
		return m.theme.SearchIndicator.Render("Searching the web...")
	case flap.SearchStatusComplete:
		return m.theme.SearchComplete.Render("Search complete")
	}
	return ""
}

func (m *Model) renderReasoning(reasoning string) string {
	title := m.theme.ReasoningTitle.Render("Reasoning")
	return m.theme.Reasoning.Render(title + "\n" + reasoning)
}

func (m *Model) renderSources(sources []flap.Source) string {
	var b strings.Builder
	b.WriteString(m.theme.ReasoningTitle.Render("Sources"))
	for i, s := range sources {
		b.WriteString("\n")
		title := s.Title
		if title == "" {
			title = s.URL
		}
		b.WriteString(fmt.Sprintf("%d. %s\n   %s", i+1, title, m.theme.SourceURL.Render(s.URL)))
	}
	return m.theme.Sources.Render(b.String())
}

// =============================================================================
// BODY RENDERING
// =============================================================================

// renderBody renders assistant text for the terminal: fenced code blocks go
// through the syntax highlighter, everything else through inline styling.
// An unterminated fence renders as plain text until it closes.
func (m *Model) renderBody(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	var code []string
	var language string
	inFence := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			if inFence {
				cb := components.NewCodeBlock(language, strings.Join(code, "\n"))
				cb.SetMaxWidth(m.theme.BubbleWidth())
				cb.SyntaxTheme = m.syntaxTheme
				out = append(out, cb.Render())
				code = nil
				language = ""
				inFence = false
			} else {
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inFence = true
			}
			continue
		}
		if inFence {
			code = append(code, line)
		} else {
			out = append(out, renderInline(line))
		}
	}

	if inFence {
		out = append(out, "```"+language)
		out = append(out, code...)
	}

	return strings.Join(out, "\n")
}

// renderInline styles `code` spans and **bold** runs within a line.
func renderInline(line string) string {
	line = replaceDelimited(line, "`", components.RenderInlineCode)
	bold := lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary)
	line = replaceDelimited(line, "**", func(s string) string { return bold.Render(s) })
	return line
}

// replaceDelimited rewrites delimiter-paired spans using render. Unpaired
// delimiters are left as-is.
func replaceDelimited(s, delim string, render func(string) string) string {
	parts := strings.Split(s, delim)
	if len(parts) < 3 {
		return s
	}
	var b strings.Builder
	for i, part := range parts {
		switch {
		case i%2 == 1 && i < len(parts)-1:
			b.WriteString(render(part))
		case i%2 == 1:
			// Trailing unpaired delimiter.
			b.WriteString(delim)
			b.WriteString(part)
		default:
			b.WriteString(part)
		}
	}
	return b.String()
}
