// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
)

func TestCodeBlockRenderPlainFallback(t *testing.T) {
	cb := NewCodeBlock("nosuchlanguage", "hello world")
	out := cb.Render()
	if !strings.Contains(out, "hello world") {
		t.Errorf("rendered block should contain the code, got %q", out)
	}
}

func TestCodeBlockLineNumbers(t *testing.T) {
	cb := NewCodeBlock("", "a\nb\nc")
	out := cb.Render()
	for _, n := range []string{"1", "2", "3"} {
		if !strings.Contains(out, n) {
			t.Errorf("rendered block missing line number %s", n)
		}
	}
}

func TestDetectLanguageUnknown(t *testing.T) {
	// Arbitrary prose should not panic and may return "".
	_ = detectLanguage("just some words here")
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusReady, "Ready"},
		{StatusStreaming, "Streaming"},
		{StatusSearching, "Searching"},
		{StatusError, "Error"},
		{StatusOffline, "Offline"},
		{Status(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatusBarViewContainsParts(t *testing.T) {
	bar := StatusBar{Width: 80, Status: StatusStreaming, Provider: "grok", Search: true, Turns: 3}
	out := bar.View()
	for _, want := range []string{"Streaming", "via grok", "search on", "3 turns"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q in %q", want, out)
		}
	}
}

func TestSpinnerInactiveViewEmpty(t *testing.T) {
	s := NewSpinner()
	if got := s.View(); got != "" {
		t.Errorf("inactive spinner view = %q, want empty", got)
	}
	s.Start("Thinking")
	if !s.Active() {
		t.Error("spinner should be active after Start")
	}
	if got := s.View(); !strings.Contains(got, "Thinking") {
		t.Errorf("active spinner view missing message: %q", got)
	}
	s.Stop()
	if s.Active() {
		t.Error("spinner should be inactive after Stop")
	}
}
