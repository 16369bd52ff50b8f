// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/model"
)

func exportConversation(t *testing.T) *model.Conversation {
	t.Helper()
	conv := model.NewConversation(nil)
	conv.AdoptID("srv-9")
	a := conv.AppendPendingExchange("Tell me about <aspirin>")
	a.BeginStreaming()
	a.AppendContent("**Aspirin** is an NSAID.\n\n```text\ndose: 81mg\n```")
	a.AppendReasoning("checking common dosages")
	a.SetProvider("grok")
	a.AddSources([]flap.Source{{Title: "Drug Ref", URL: "https://ref.example/aspirin"}})
	a.Complete()
	return conv
}

func TestHTMLExporter(t *testing.T) {
	conv := exportConversation(t)
	out, err := NewHTMLExporter(nil).Export(conv)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	htmlStr := string(out)

	checks := []string{
		"<!DOCTYPE html>",
		"dark-theme",
		"&lt;aspirin&gt;",                    // user content escaped
		"<strong>Aspirin</strong>",           // assistant markdown formatted
		"<summary>Reasoning</summary>",       // reasoning panel
		`href="https://ref.example/aspirin"`, // sources
		`<span class="provider-badge">grok</span>`,
		"dose: 81mg",
	}
	for _, want := range checks {
		if !strings.Contains(htmlStr, want) {
			t.Errorf("HTML export missing %q", want)
		}
	}
	if strings.Contains(htmlStr, "<aspirin>") {
		t.Error("raw user markup leaked into HTML")
	}
}

func TestHTMLExporter_EmptyConversation(t *testing.T) {
	if _, err := NewHTMLExporter(nil).Export(model.NewConversation(nil)); err == nil {
		t.Error("Export() of empty conversation should fail")
	}
	if _, err := NewHTMLExporter(nil).Export(nil); err == nil {
		t.Error("Export() of nil conversation should fail")
	}
}

func TestMarkdownExporter(t *testing.T) {
	conv := exportConversation(t)
	out, err := NewMarkdownExporter(nil).Export(conv)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	md := string(out)

	for _, want := range []string{
		"# Tell me about <aspirin>",
		"## You",
		"## Flap AI (grok)",
		"**Aspirin** is an NSAID.",
		"[Drug Ref](https://ref.example/aspirin)",
		"<summary>Reasoning</summary>",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown export missing %q", want)
		}
	}
}

func TestJSONExporter_RoundTrip(t *testing.T) {
	conv := exportConversation(t)
	out, err := NewJSONExporter().Export(conv)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded model.Conversation
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("exported JSON invalid: %v", err)
	}
	if decoded.ServerID != "srv-9" || len(decoded.Messages) != 2 {
		t.Errorf("decoded = serverID %q, %d messages", decoded.ServerID, len(decoded.Messages))
	}
}

func TestExportToFile(t *testing.T) {
	conv := exportConversation(t)
	opts := DefaultOptions()
	opts.OutputDir = t.TempDir()
	opts.OpenAfterExport = false

	path, err := ExportHTML(conv, opts)
	if err != nil {
		t.Fatalf("ExportHTML() error = %v", err)
	}
	if !strings.HasSuffix(path, ".html") {
		t.Errorf("path = %q, want .html suffix", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces to underscores", "my chat log", "my_chat_log"},
		{"path separators", "a/b\\c", "a-b-c"},
		{"windows reserved", `a:b*c?d"e<f>g|h`, "a-b-c-d-e-f-g-h"},
		{"empty", "", "conversation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.input); got != tt.want {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
