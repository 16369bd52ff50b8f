// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package flap

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Turn is one prior exchange turn sent as conversation history.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the request body shared by the streaming and synchronous
// chat endpoints.
type ChatRequest struct {
	// Message is the new user turn.
	Message string `json:"message"`

	// ConversationHistory holds all prior turns in order. The backend owns
	// the system prompt; only user/assistant turns appear here.
	ConversationHistory []Turn `json:"conversation_history"`

	// ConversationID is the server-assigned conversation identifier, or
	// null when the exchange starts a new conversation.
	ConversationID *string `json:"conversation_id"`
}

// =============================================================================
// STREAM EVENT TYPES
// =============================================================================

// Search status values carried by Event.SearchStatus.
const (
	SearchStatusSearching = "searching"
	SearchStatusComplete  = "complete"
)

// Source is a citation record attached to a search-augmented answer.
// Sources are unique by URL within one message.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Event is one decoded record from the stream. Every field is optional;
// presence is semantic. content/reasoning are incremental deltas to append
// in arrival order, done/error are terminal and exclusive.
type Event struct {
	Content        string   `json:"content,omitempty"`
	Reasoning      string   `json:"reasoning,omitempty"`
	Provider       string   `json:"provider,omitempty"`
	ConversationID string   `json:"conversation_id,omitempty"`
	SearchStatus   string   `json:"search_status,omitempty"`
	SearchQuery    string   `json:"search_query,omitempty"`
	Sources        []Source `json:"sources,omitempty"`
	Error          string   `json:"error,omitempty"`
	Done           bool     `json:"done,omitempty"`
}

// Terminal reports whether the event ends the exchange.
func (e *Event) Terminal() bool {
	return e.Done || e.Error != ""
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the synchronous fallback endpoint's response body.
type ChatResponse struct {
	Response       string `json:"response"`
	Reasoning      string `json:"reasoning,omitempty"`
	Provider       string `json:"provider,omitempty"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// HealthStatus is the /health probe response.
type HealthStatus struct {
	Status        string `json:"status"`
	APIConfigured bool   `json:"grok_api_configured"`
	APIVersion    string `json:"api_version"`
}
