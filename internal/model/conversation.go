// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/morganforge/flap-tui/internal/flap"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds an ordered message history plus the server-assigned
// conversation identifier.
//
// The server ID is adopted exactly once: the first conversation_id event
// of a session wins, and a later conflicting value is logged and ignored.
// The local ID exists before the server has assigned anything and is used
// for on-disk persistence.
type Conversation struct {
	// LocalID identifies the conversation on this machine.
	LocalID string `json:"local_id"`

	// ServerID is the backend-assigned conversation identifier, empty
	// until adopted.
	ServerID string `json:"server_id,omitempty"`

	Title     string     `json:"title,omitempty"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	logf func(format string, args ...any)
}

// NewConversation creates an empty conversation. logf may be nil.
func NewConversation(logf func(format string, args ...any)) *Conversation {
	now := time.Now()
	return &Conversation{
		LocalID:   "conv_" + uuid.NewString(),
		Messages:  []*Message{},
		CreatedAt: now,
		UpdatedAt: now,
		logf:      logf,
	}
}

// =============================================================================
// SERVER ID ADOPTION
// =============================================================================

// AdoptID records the server-assigned conversation ID. The first non-empty
// value wins; a differing later value is an anomaly, logged and discarded
// so outbound requests keep using the ID the history was built under.
func (c *Conversation) AdoptID(serverID string) {
	if serverID == "" {
		return
	}
	if c.ServerID == "" {
		c.ServerID = serverID
		c.UpdatedAt = time.Now()
		return
	}
	if c.ServerID != serverID && c.logf != nil {
		c.logf("conversation: ignoring conflicting server id %q (keeping %q)", serverID, c.ServerID)
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AppendPendingExchange appends the user's message and a pending assistant
// placeholder, returning the placeholder for the stream controller to fill.
func (c *Conversation) AppendPendingExchange(userText string) *Message {
	user := NewUserMessage(userText)
	assistant := NewPendingAssistantMessage()
	c.Messages = append(c.Messages, user, assistant)
	c.UpdatedAt = time.Now()

	if c.Title == "" {
		c.Title = titleFrom(userText)
	}
	return assistant
}

// Reset clears the history and drops the adopted server ID, starting a
// fresh conversation under a new local ID.
func (c *Conversation) Reset() {
	c.LocalID = "conv_" + uuid.NewString()
	c.ServerID = ""
	c.Title = ""
	c.Messages = c.Messages[:0]
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
}

// Last returns the most recent message, or nil for an empty conversation.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// =============================================================================
// OUTBOUND HISTORY
// =============================================================================

// History builds the prior-turn list for an outbound request. Only
// completed user and assistant turns are included; a pending or failed
// exchange never leaks into the context sent upstream.
func (c *Conversation) History() []flap.Turn {
	turns := make([]flap.Turn, 0, len(c.Messages))
	for _, m := range c.Messages {
		if m.Status != StatusComplete {
			continue
		}
		turns = append(turns, flap.Turn{
			Role:    m.Role.String(),
			Content: m.Content,
		})
	}
	return turns
}

// RequestID returns the conversation_id pointer for an outbound request:
// nil before a server ID has been adopted, so the JSON field serializes
// as an explicit null and the backend opens a new conversation.
func (c *Conversation) RequestID() *string {
	if c.ServerID == "" {
		return nil
	}
	id := c.ServerID
	return &id
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

const maxTitleRunes = 48

// titleFrom derives a conversation title from the first user message.
func titleFrom(text string) string {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) > maxTitleRunes {
		line = string(runes[:maxTitleRunes-3]) + "..."
	}
	if line == "" {
		line = "New conversation"
	}
	return line
}
