// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"strings"
	"testing"
)

// =============================================================================
// INLINE FORMATTER TESTS
// =============================================================================

func TestFormatInline_Escaping(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "script tag is escaped",
			input: "<script>alert(1)</script>",
			want:  "&lt;script&gt;alert(1)&lt;/script&gt;",
		},
		{
			name:  "ampersand is escaped",
			input: "fish & chips",
			want:  "fish &amp; chips",
		},
		{
			name:  "quotes are escaped",
			input: `say "hi" and 'bye'`,
			want:  "say &#34;hi&#34; and &#39;bye&#39;",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatInline(tc.input)
			if got != tc.want {
				t.Errorf("FormatInline(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFormatInline_Markup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bold asterisks",
			input: "a **bold** word",
			want:  "a <strong>bold</strong> word",
		},
		{
			name:  "bold underscores",
			input: "a __bold__ word",
			want:  "a <strong>bold</strong> word",
		},
		{
			name:  "italic asterisks",
			input: "an *italic* word",
			want:  "an <em>italic</em> word",
		},
		{
			name:  "italic underscores",
			input: "an _italic_ word",
			want:  "an <em>italic</em> word",
		},
		{
			name:  "bold wins over italic",
			input: "**x**",
			want:  "<strong>x</strong>",
		},
		{
			name:  "bold and italic mixed",
			input: "**bold** and *italic*",
			want:  "<strong>bold</strong> and <em>italic</em>",
		},
		{
			name:  "inline code",
			input: "run `go test` now",
			want:  "run <code>go test</code> now",
		},
		{
			name:  "link",
			input: "see [docs](https://example.com/a)",
			want:  `see <a href="https://example.com/a" target="_blank" rel="noopener noreferrer">docs</a>`,
		},
		{
			name:  "lone asterisk stays literal",
			input: "2 * 3 = 6",
			want:  "2 * 3 = 6",
		},
		{
			name:  "unterminated bold stays literal",
			input: "**oops",
			want:  "**oops",
		},
		{
			name:  "empty delimiters stay literal",
			input: "****",
			want:  "****",
		},
		{
			name:  "unmatched bracket stays literal",
			input: "[text only",
			want:  "[text only",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatInline(tc.input)
			if got != tc.want {
				t.Errorf("FormatInline(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

// TestFormatInline_ScriptNeverSurvives verifies the escape-before-substitute
// invariant: no input can yield an unescaped <script> literal.
func TestFormatInline_ScriptNeverSurvives(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		"**<script>x</script>**",
		"`<script>`",
		"[<script>](x)",
		"*<script>*",
	}

	for _, input := range inputs {
		got := FormatInline(input)
		if strings.Contains(got, "<script>") {
			t.Errorf("FormatInline(%q) = %q contains live <script> tag", input, got)
		}
	}
}

// TestFormatInline_JavascriptHref documents current behavior: link href
// schemes are not validated, so a javascript: URL survives as the literal
// escaped href. Known hardening gap; restricting to http/https/mailto is
// the recommended fix.
func TestFormatInline_JavascriptHref(t *testing.T) {
	got := FormatInline("[click](javascript:alert(1))")
	want := `<a href="javascript:alert(1)" target="_blank" rel="noopener noreferrer">click</a>`
	if got != want {
		t.Errorf("FormatInline javascript link = %q, want %q", got, want)
	}
}
