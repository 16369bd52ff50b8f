// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"regexp"
	"strings"
)

// =============================================================================
// BLOCK STATE MACHINE
// =============================================================================

// blockState tracks which block element is currently open while walking
// lines. Exactly one block is open at a time.
type blockState int

const (
	stateNone blockState = iota
	stateParagraph
	stateUnorderedList
	stateOrderedList
	stateCodeBlock
)

var (
	headingRe  = regexp.MustCompile(`^(#{1,3}) (.*)$`)
	bulletRe   = regexp.MustCompile(`^[-*\x{2022}] (.*)$`)
	orderedRe  = regexp.MustCompile(`^\d+\. (.*)$`)
	fenceRe    = regexp.MustCompile("^```([a-zA-Z0-9_+-]*)\\s*$")
)

// Format converts an accumulated message text into a complete, well-nested
// HTML string. The input may be any prefix of the eventual final text; the
// output is always balanced.
//
// Pure function: no state is carried between calls. Streaming re-renders
// call Format on the full accumulated text after every delta, which keeps
// partial-render correctness trivial - the HTML for a prefix is derived
// from nothing but that prefix.
func Format(text string) string {
	var out strings.Builder
	state := stateNone

	// Fenced code content is accumulated verbatim and only emitted when the
	// closing fence arrives. A fence left open at end of input is not
	// flushed; the next call re-derives everything once more bytes arrive.
	var codeLines []string
	var codeLang string

	closeBlock := func() {
		switch state {
		case stateParagraph:
			out.WriteString("</p>")
		case stateUnorderedList:
			out.WriteString("</ul>")
		case stateOrderedList:
			out.WriteString("</ol>")
		}
		state = stateNone
	}

	for _, line := range strings.Split(text, "\n") {
		if state == stateCodeBlock {
			if fenceRe.MatchString(line) {
				out.WriteString(openCodeTag(codeLang))
				out.WriteString(EscapeOnly(strings.Join(codeLines, "\n")))
				out.WriteString("</code></pre>")
				codeLines = nil
				state = stateNone
				continue
			}
			codeLines = append(codeLines, line)
			continue
		}

		if m := fenceRe.FindStringSubmatch(line); m != nil {
			closeBlock()
			codeLang = m[1]
			codeLines = nil
			state = stateCodeBlock
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			closeBlock()
			// Heading levels are offset by +2: the chat chrome owns h1/h2,
			// so a document-level # renders as h3. Heading text is escaped
			// but not inline-formatted.
			level := len(m[1]) + 2
			tag := "h" + string(rune('0'+level))
			out.WriteString("<" + tag + ">" + EscapeOnly(m[2]) + "</" + tag + ">")
			continue
		}

		if m := bulletRe.FindStringSubmatch(line); m != nil {
			if state != stateUnorderedList {
				closeBlock()
				out.WriteString("<ul>")
				state = stateUnorderedList
			}
			out.WriteString("<li>" + FormatInline(m[1]) + "</li>")
			continue
		}

		if m := orderedRe.FindStringSubmatch(line); m != nil {
			// The captured source number is discarded; the list element
			// renders with sequential display numbers.
			if state != stateOrderedList {
				closeBlock()
				out.WriteString("<ol>")
				state = stateOrderedList
			}
			out.WriteString("<li>" + FormatInline(m[1]) + "</li>")
			continue
		}

		if strings.TrimSpace(line) == "" {
			closeBlock()
			continue
		}

		// Plain text line: open a paragraph if nothing else is open, and
		// join consecutive lines with a separating space (soft wrap).
		if state != stateParagraph {
			closeBlock()
			out.WriteString("<p>")
			state = stateParagraph
		}
		out.WriteString(FormatInline(line) + " ")
	}

	closeBlock()
	return out.String()
}

// openCodeTag builds the opening pre/code tags, carrying the fence language
// as a class when one was given.
func openCodeTag(lang string) string {
	if lang == "" {
		return "<pre><code>"
	}
	return `<pre><code class="language-` + EscapeOnly(lang) + `">`
}
