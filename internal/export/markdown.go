// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/morganforge/flap-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown format.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	sb.WriteString("# " + conv.Title + "\n\n")

	if e.options.IncludeMetadata {
		sb.WriteString("> ")
		if conv.ServerID != "" {
			sb.WriteString(fmt.Sprintf("Conversation: %s | ", conv.ServerID))
		}
		sb.WriteString(fmt.Sprintf("Created: %s | Messages: %d\n\n",
			formatTimestamp(conv.CreatedAt), len(conv.Messages)))
	}

	for _, msg := range conv.Messages {
		sb.WriteString("## " + msg.Role.DisplayName())
		if msg.Provider != "" {
			sb.WriteString(" (" + msg.Provider + ")")
		}
		if e.options.IncludeTimestamps {
			sb.WriteString(" — " + formatShortTimestamp(msg.Timestamp))
		}
		sb.WriteString("\n\n")

		// Message content is already markdown; emit it verbatim.
		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")

		if msg.Reasoning != "" {
			sb.WriteString("<details>\n<summary>Reasoning</summary>\n\n")
			sb.WriteString(strings.TrimSpace(msg.Reasoning))
			sb.WriteString("\n\n</details>\n\n")
		}

		if len(msg.Sources) > 0 {
			sb.WriteString("**Sources:**\n\n")
			for i, s := range msg.Sources {
				title := s.Title
				if title == "" {
					title = s.URL
				}
				sb.WriteString(fmt.Sprintf("%d. [%s](%s)\n", i+1, title, s.URL))
			}
			sb.WriteString("\n")
		}

		if msg.Status == model.StatusFailed {
			sb.WriteString("**Failed:** " + msg.ErrorText + "\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}
