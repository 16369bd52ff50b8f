// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/markdown"
	"github.com/morganforge/flap-tui/internal/model"
)

// =============================================================================
// SEARCH INDICATOR
// =============================================================================

// SearchIndicator is the transient research-phase marker shown inside an
// assistant message. It is replaced in place when the phase completes,
// never appended a second time.
type SearchIndicator struct {
	Status string // flap.SearchStatusSearching or flap.SearchStatusComplete
	Query  string
}

// HTML renders the indicator fragment.
func (s SearchIndicator) HTML() string {
	switch s.Status {
	case flap.SearchStatusSearching:
		if s.Query != "" {
			return fmt.Sprintf(`<div class="search-indicator searching">Searching the web for &quot;%s&quot;...</div>`,
				html.EscapeString(s.Query))
		}
		return `<div class="search-indicator searching">Searching the web...</div>`
	case flap.SearchStatusComplete:
		return `<div class="search-indicator complete">Search complete</div>`
	default:
		return ""
	}
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// Message renders a single message to an HTML fragment.
//
// The assistant body is re-rendered from the full accumulated text on every
// call; because the markdown formatter is a pure function of its input, a
// mid-stream render is always a prefix-consistent extension of the last one.
func Message(m *model.Message, indicator *SearchIndicator) string {
	var sb strings.Builder

	roleClass := m.Role.String()
	sb.WriteString(fmt.Sprintf("<div class=\"message %s-message\">\n", roleClass))

	sb.WriteString("  <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("    <span class=\"role-label\">%s</span>\n", html.EscapeString(m.Role.DisplayName())))
	if m.Provider != "" {
		sb.WriteString(fmt.Sprintf("    <span class=\"provider-badge\">%s</span>\n", html.EscapeString(m.Provider)))
	}
	sb.WriteString("  </div>\n")

	if indicator != nil {
		sb.WriteString("  " + indicator.HTML() + "\n")
	}

	sb.WriteString("  <div class=\"message-content\">\n")
	if m.Role == model.RoleUser {
		sb.WriteString("<p>" + markdown.EscapeOnly(m.Content) + "</p>\n")
	} else {
		sb.WriteString(markdown.Format(m.Text()))
	}
	sb.WriteString("  </div>\n")

	// Reasoning and sources attach only once the message is terminal.
	if m.Status.Terminal() {
		if r := m.ReasoningText(); r != "" {
			sb.WriteString(reasoningPanel(r))
		}
		if len(m.Sources) > 0 {
			sb.WriteString(sourcesList(m.Sources))
		}
	}

	if m.Status == model.StatusFailed {
		sb.WriteString(fmt.Sprintf("  <div class=\"message-error\">%s</div>\n",
			markdown.EscapeOnly(m.ErrorText)))
	}

	sb.WriteString("</div>\n")
	return sb.String()
}

// reasoningPanel renders the reasoning trace as a collapsed block.
func reasoningPanel(reasoning string) string {
	var sb strings.Builder
	sb.WriteString("  <details class=\"reasoning\">\n")
	sb.WriteString("    <summary>Reasoning</summary>\n")
	sb.WriteString("    " + markdown.Format(reasoning))
	sb.WriteString("\n  </details>\n")
	return sb.String()
}

// sourcesList renders the citation sources section.
func sourcesList(sources []flap.Source) string {
	var sb strings.Builder
	sb.WriteString("  <div class=\"sources\">\n")
	sb.WriteString("    <span class=\"sources-label\">Sources</span>\n")
	sb.WriteString("    <ol class=\"sources-list\">\n")
	for _, s := range sources {
		title := s.Title
		if title == "" {
			title = s.URL
		}
		sb.WriteString(fmt.Sprintf("      <li><a href=\"%s\" target=\"_blank\" rel=\"noopener noreferrer\">%s</a>",
			html.EscapeString(s.URL), html.EscapeString(title)))
		if s.Snippet != "" {
			sb.WriteString(fmt.Sprintf("<span class=\"source-snippet\">%s</span>", html.EscapeString(s.Snippet)))
		}
		sb.WriteString("</li>\n")
	}
	sb.WriteString("    </ol>\n")
	sb.WriteString("  </div>\n")
	return sb.String()
}
