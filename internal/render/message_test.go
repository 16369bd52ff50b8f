// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"

	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/model"
)

func TestMessage_UserEscaped(t *testing.T) {
	m := model.NewUserMessage("<script>alert(1)</script>")
	out := Message(m, nil)

	if strings.Contains(out, "<script>") {
		t.Errorf("user markup survived: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("escaped form missing: %s", out)
	}
	if !strings.Contains(out, `class="message user-message"`) {
		t.Errorf("role class missing: %s", out)
	}
}

func TestMessage_AssistantMarkdown(t *testing.T) {
	m := model.NewPendingAssistantMessage()
	m.BeginStreaming()
	m.AppendContent("**bold** answer")
	m.SetProvider("grok")
	out := Message(m, nil)

	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("markdown not applied: %s", out)
	}
	if !strings.Contains(out, `<span class="provider-badge">grok</span>`) {
		t.Errorf("provider badge missing: %s", out)
	}
}

func TestMessage_ReasoningAndSourcesOnlyWhenTerminal(t *testing.T) {
	m := model.NewPendingAssistantMessage()
	m.BeginStreaming()
	m.AppendContent("answer")
	m.AppendReasoning("chain of thought")
	m.AddSources([]flap.Source{{Title: "Ref", URL: "https://ref.example", Snippet: "a snippet"}})

	streaming := Message(m, nil)
	if strings.Contains(streaming, "<details") || strings.Contains(streaming, "sources-list") {
		t.Errorf("reasoning/sources rendered mid-stream: %s", streaming)
	}

	m.Complete()
	done := Message(m, nil)
	if !strings.Contains(done, "<summary>Reasoning</summary>") {
		t.Errorf("reasoning panel missing after completion: %s", done)
	}
	if !strings.Contains(done, `href="https://ref.example"`) || !strings.Contains(done, "a snippet") {
		t.Errorf("sources missing after completion: %s", done)
	}
	if !strings.Contains(done, `rel="noopener noreferrer"`) {
		t.Errorf("source links need noopener: %s", done)
	}
}

func TestMessage_FailedShowsError(t *testing.T) {
	m := model.NewPendingAssistantMessage()
	m.BeginStreaming()
	m.AppendContent("partial")
	m.Fail("backend <unavailable>")
	out := Message(m, nil)

	if !strings.Contains(out, `class="message-error"`) {
		t.Errorf("error block missing: %s", out)
	}
	if strings.Contains(out, "<unavailable>") {
		t.Errorf("error text not escaped: %s", out)
	}
	if !strings.Contains(out, "partial") {
		t.Errorf("partial content dropped: %s", out)
	}
}

func TestMessage_PrefixConsistentAcrossDeltas(t *testing.T) {
	m := model.NewPendingAssistantMessage()
	m.BeginStreaming()

	m.AppendContent("Take **aspi")
	first := Message(m, nil)
	m.AppendContent("rin** daily")
	second := Message(m, nil)

	// Mid-stream renders are full re-renders of the accumulated text;
	// the later render must contain the finished markup.
	if !strings.Contains(second, "<strong>aspirin</strong>") {
		t.Errorf("second render missing finished markup: %s", second)
	}
	if first == second {
		t.Error("render did not change after new delta")
	}
}

func TestSearchIndicator(t *testing.T) {
	tests := []struct {
		name string
		in   SearchIndicator
		want string
	}{
		{"searching with query", SearchIndicator{Status: flap.SearchStatusSearching, Query: "aspirin dosage"},
			`Searching the web for &quot;aspirin dosage&quot;...`},
		{"searching without query", SearchIndicator{Status: flap.SearchStatusSearching}, "Searching the web..."},
		{"complete", SearchIndicator{Status: flap.SearchStatusComplete}, "Search complete"},
		{"unknown", SearchIndicator{Status: "bogus"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.HTML()
			if tt.want == "" {
				if got != "" {
					t.Errorf("HTML() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("HTML() = %q, want substring %q", got, tt.want)
			}
		})
	}
}

func TestSearchIndicator_QueryEscaped(t *testing.T) {
	ind := SearchIndicator{Status: flap.SearchStatusSearching, Query: `<img src=x>`}
	if strings.Contains(ind.HTML(), "<img") {
		t.Errorf("query not escaped: %s", ind.HTML())
	}
}
