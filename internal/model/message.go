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
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Flap AI"
	default:
		return string(r)
	}
}

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status is the lifecycle state of a message.
//
// pending -> streaming -> complete | failed. A message is mutable only
// until it reaches a terminal status; after that it is frozen and owned by
// its conversation's history.
type Status string

const (
	StatusPending   Status = "pending"
	StatusStreaming Status = "streaming"
	StatusComplete  Status = "complete"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is complete or failed.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// While streaming, the answer and reasoning accumulate through builders so
// repeated appends stay linear. The in-flight message is exclusively owned
// by the one active exchange; nothing else mutates it until terminal.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Finalized content (set when the message reaches a terminal status,
	// or at creation for user messages)
	Content   string `json:"content"`
	Reasoning string `json:"reasoning,omitempty"`

	// Out-of-band channels
	Provider string        `json:"provider,omitempty"`
	Sources  []flap.Source `json:"sources,omitempty"`

	// Failure detail for StatusFailed
	ErrorText string `json:"error_text,omitempty"`

	Status Status `json:"status"`

	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	streamContent   strings.Builder
	streamReasoning strings.Builder
}

// NewUserMessage creates a completed user message.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
		Status:    StatusComplete,
	}
}

// NewPendingAssistantMessage creates the placeholder assistant message for
// an exchange that is about to open.
func NewPendingAssistantMessage() *Message {
	return &Message{
		ID:        generateID(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		Status:    StatusPending,
	}
}

// =============================================================================
// STREAMING MUTATION
// =============================================================================

// BeginStreaming moves a pending message into the streaming state.
func (m *Message) BeginStreaming() {
	if m.Status == StatusPending {
		m.Status = StatusStreaming
	}
}

// AppendContent appends a content delta in arrival order.
func (m *Message) AppendContent(delta string) {
	if m.Status.Terminal() {
		return
	}
	m.streamContent.WriteString(delta)
}

// AppendReasoning appends a reasoning delta in arrival order.
func (m *Message) AppendReasoning(delta string) {
	if m.Status.Terminal() {
		return
	}
	m.streamReasoning.WriteString(delta)
}

// SetProvider records the answering backend model. Repeats are idempotent
// overwrites; the protocol sends the tag at most once but tolerating
// repeats costs nothing.
func (m *Message) SetProvider(provider string) {
	if m.Status.Terminal() || provider == "" {
		return
	}
	m.Provider = provider
}

// AddSources appends citation sources, deduplicating by URL.
func (m *Message) AddSources(sources []flap.Source) {
	if m.Status.Terminal() {
		return
	}
	seen := make(map[string]bool, len(m.Sources))
	for _, s := range m.Sources {
		seen[s.URL] = true
	}
	for _, s := range sources {
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		m.Sources = append(m.Sources, s)
	}
}

// Complete freezes the message with its accumulated text.
func (m *Message) Complete() {
	if m.Status.Terminal() {
		return
	}
	m.Content = m.streamContent.String()
	m.Reasoning = m.streamReasoning.String()
	m.Status = StatusComplete
}

// CompleteWith freezes the message with externally supplied final text,
// used by the non-streaming fallback path which replaces any partial
// render wholesale.
func (m *Message) CompleteWith(content, reasoning, provider string) {
	if m.Status.Terminal() {
		return
	}
	m.streamContent.Reset()
	m.streamReasoning.Reset()
	m.Content = content
	m.Reasoning = reasoning
	if provider != "" {
		m.Provider = provider
	}
	m.Status = StatusComplete
}

// Fail freezes the message as failed, preserving any partial content
// already accumulated alongside the failure text.
func (m *Message) Fail(errText string) {
	if m.Status.Terminal() {
		return
	}
	m.Content = m.streamContent.String()
	m.Reasoning = m.streamReasoning.String()
	m.ErrorText = errText
	m.Status = StatusFailed
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Text returns the message text: the live accumulation while streaming,
// the frozen content afterwards.
func (m *Message) Text() string {
	if m.Status.Terminal() || m.Role == RoleUser {
		return m.Content
	}
	return m.streamContent.String()
}

// ReasoningText returns the reasoning trace accumulated so far.
func (m *Message) ReasoningText() string {
	if m.Status.Terminal() {
		return m.Reasoning
	}
	return m.streamReasoning.String()
}

// Preview returns a rune-safe truncated preview of the message text.
func (m *Message) Preview(maxRunes int) string {
	text := m.Text()
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// IsEmpty reports whether the message has no text.
func (m *Message) IsEmpty() bool {
	return m.Text() == ""
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	return "msg_" + uuid.NewString()
}
