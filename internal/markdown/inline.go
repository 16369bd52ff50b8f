// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"html"
	"regexp"
)

// =============================================================================
// INLINE FORMATTER
// =============================================================================

// Inline substitution patterns. All patterns run against already-escaped
// text and none of their replacements introduce unescaped characters.
//
// Bold must run before italic so that **x** is not consumed as two nested
// italic runs. All delimiter pairs are non-greedy and non-empty; a lone or
// unbalanced delimiter simply never matches and stays literal text.
var (
	boldStarRe    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderRe   = regexp.MustCompile(`__(.+?)__`)
	italicStarRe  = regexp.MustCompile(`\*([^*]+?)\*`)
	italicUnderRe = regexp.MustCompile(`_([^_]+?)_`)
	inlineCodeRe  = regexp.MustCompile("`([^`]+)`")
	// The URL group tolerates one level of nested parentheses so hrefs like
	// wiki links or javascript:alert(1) capture whole.
	linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^()]*(?:\([^()]*\)[^()]*)*)\)`)
)

// FormatInline converts a single line of raw text into an HTML-safe string
// with bold, italic, inline code, and link markup applied.
//
// The input must not contain a newline; callers split into lines first.
//
// SECURITY: escaping happens before any substitution. The markup patterns
// only ever see escaped text, so user-supplied angle brackets or ampersands
// cannot produce executable markup regardless of how they interleave with
// delimiters.
func FormatInline(line string) string {
	s := html.EscapeString(line)

	s = boldStarRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = boldUnderRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicStarRe.ReplaceAllString(s, "<em>$1</em>")
	s = italicUnderRe.ReplaceAllString(s, "<em>$1</em>")
	s = inlineCodeRe.ReplaceAllString(s, "<code>$1</code>")

	// Links open in a new tab. rel="noopener noreferrer" prevents the opened
	// page from obtaining a reference back to the opener window.
	//
	// NOTE: the href scheme is not validated; a javascript: URL survives as
	// the literal (escaped) href. Known hardening gap, documented in tests.
	s = linkRe.ReplaceAllString(s, `<a href="$2" target="_blank" rel="noopener noreferrer">$1</a>`)

	return s
}

// EscapeOnly escapes a line without applying any markup substitution.
// Used for heading text and code content, which render their markup
// characters literally.
func EscapeOnly(line string) string {
	return html.EscapeString(line)
}
