// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
	"testing"
)

func TestConversation_AdoptID(t *testing.T) {
	var logged []string
	c := NewConversation(func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	})

	c.AdoptID("")
	if c.ServerID != "" {
		t.Fatalf("empty id adopted: %q", c.ServerID)
	}

	c.AdoptID("abc123")
	if c.ServerID != "abc123" {
		t.Fatalf("ServerID = %q, want %q", c.ServerID, "abc123")
	}

	// Same id again is a no-op, no log.
	c.AdoptID("abc123")
	if len(logged) != 0 {
		t.Errorf("repeat of same id logged: %v", logged)
	}

	// Conflicting id: first write wins, anomaly logged.
	c.AdoptID("xyz789")
	if c.ServerID != "abc123" {
		t.Errorf("ServerID overwritten to %q", c.ServerID)
	}
	if len(logged) != 1 || !strings.Contains(logged[0], "xyz789") {
		t.Errorf("conflict not logged: %v", logged)
	}
}

func TestConversation_AppendPendingExchange(t *testing.T) {
	c := NewConversation(nil)
	assistant := c.AppendPendingExchange("What is aspirin?")

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if c.Messages[0].Role != RoleUser || c.Messages[0].Content != "What is aspirin?" {
		t.Errorf("user message wrong: %+v", c.Messages[0])
	}
	if assistant.Role != RoleAssistant || assistant.Status != StatusPending {
		t.Errorf("assistant placeholder wrong: role=%q status=%q", assistant.Role, assistant.Status)
	}
	if c.Last() != assistant {
		t.Errorf("Last() is not the assistant placeholder")
	}
	if c.Title != "What is aspirin?" {
		t.Errorf("Title = %q", c.Title)
	}
}

func TestConversation_HistoryskipsIncomplete(t *testing.T) {
	c := NewConversation(nil)

	a1 := c.AppendPendingExchange("first question")
	a1.BeginStreaming()
	a1.AppendContent("first answer")
	a1.Complete()

	a2 := c.AppendPendingExchange("second question")
	a2.BeginStreaming()
	a2.Fail("timeout")

	c.AppendPendingExchange("third question") // still pending

	turns := c.History()
	// Completed: q1, a1, q2, q3 user messages are complete at creation;
	// the failed and pending assistant turns are excluded.
	want := []struct{ role, content string }{
		{"user", "first question"},
		{"assistant", "first answer"},
		{"user", "second question"},
		{"user", "third question"},
	}
	if len(turns) != len(want) {
		t.Fatalf("len(turns) = %d, want %d: %+v", len(turns), len(want), turns)
	}
	for i, w := range want {
		if turns[i].Role != w.role || turns[i].Content != w.content {
			t.Errorf("turns[%d] = %+v, want %+v", i, turns[i], w)
		}
	}
}

func TestConversation_RequestID(t *testing.T) {
	c := NewConversation(nil)
	if c.RequestID() != nil {
		t.Error("RequestID before adoption should be nil")
	}
	c.AdoptID("abc123")
	id := c.RequestID()
	if id == nil || *id != "abc123" {
		t.Errorf("RequestID after adoption = %v", id)
	}
}

func TestConversation_Reset(t *testing.T) {
	c := NewConversation(nil)
	oldLocal := c.LocalID
	c.AdoptID("abc123")
	c.AppendPendingExchange("hello")

	c.Reset()

	if c.Len() != 0 || c.ServerID != "" || c.Title != "" {
		t.Errorf("Reset left state: len=%d serverID=%q title=%q", c.Len(), c.ServerID, c.Title)
	}
	if c.LocalID == oldLocal {
		t.Errorf("Reset kept local id %q", c.LocalID)
	}
}

func TestTitleFrom(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Hello there", "Hello there"},
		{"first line only", "line one\nline two", "line one"},
		{"trimmed", "  padded  ", "padded"},
		{"empty", "   ", "New conversation"},
		{"truncated", strings.Repeat("a", 100), strings.Repeat("a", 45) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleFrom(tt.in); got != tt.want {
				t.Errorf("titleFrom(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
