// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sse

import (
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// FRAME DECODER
// =============================================================================

// dataPrefix marks a payload-carrying line. Anything else on the stream
// (blank keep-alive lines, ": comment" lines) is ignored.
const dataPrefix = "data: "

// readBufferSize is the chunk size for reading the response body. Frames
// are far smaller in practice.
const readBufferSize = 4096

// Logger receives diagnostics for skipped malformed frames. Wired to the
// app debug log by default; tests may replace it.
type Logger func(format string, args ...any)

// Decoder reassembles an event stream from chunks that arrive at arbitrary
// byte boundaries. Feed it raw chunks; it returns the JSON payloads of all
// complete "data: " lines, carrying any unterminated tail over to the next
// feed.
type Decoder struct {
	carry strings.Builder
	logf  Logger

	// Counters for diagnostics.
	frames    int
	malformed int
}

// NewDecoder creates a decoder. logf may be nil.
func NewDecoder(logf Logger) *Decoder {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Decoder{logf: logf}
}

// Feed consumes one chunk and returns the payloads of every complete frame
// it completes. The final segment after the last newline (possibly empty,
// possibly a partial line or partial UTF-8 sequence) is buffered, not
// processed.
func (d *Decoder) Feed(chunk []byte) []json.RawMessage {
	d.carry.Write(chunk)
	buffered := d.carry.String()

	lines := strings.Split(buffered, "\n")
	d.carry.Reset()
	d.carry.WriteString(lines[len(lines)-1])

	var payloads []json.RawMessage
	for _, line := range lines[:len(lines)-1] {
		if p, ok := d.decodeLine(line); ok {
			payloads = append(payloads, p)
		}
	}
	return payloads
}

// Flush processes any buffered tail as a final line. Call once when the
// chunk source reports end-of-stream, in case the last frame was not
// newline-terminated.
func (d *Decoder) Flush() []json.RawMessage {
	line := d.carry.String()
	d.carry.Reset()
	if p, ok := d.decodeLine(line); ok {
		return []json.RawMessage{p}
	}
	return nil
}

// decodeLine strips the data prefix and validates the JSON payload.
// Returns ok=false for non-data lines and for malformed frames; malformed
// frames are counted and logged but never abort the stream (an intermediary
// proxy may split a frame awkwardly without corrupting its neighbors).
func (d *Decoder) decodeLine(line string) (json.RawMessage, bool) {
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, dataPrefix) {
		return nil, false
	}

	payload := line[len(dataPrefix):]
	if !json.Valid([]byte(payload)) {
		d.malformed++
		d.logf("sse: skipping malformed frame: %.120s", payload)
		return nil, false
	}

	d.frames++
	return json.RawMessage(payload), true
}

// Frames returns the number of well-formed frames decoded so far.
func (d *Decoder) Frames() int {
	return d.frames
}

// Malformed returns the number of malformed frames skipped so far.
func (d *Decoder) Malformed() int {
	return d.malformed
}

// =============================================================================
// STREAM SCANNER
// =============================================================================

// Scan reads r to end-of-stream, feeding each read through the decoder and
// invoking fn for every decoded payload in arrival order. fn returning an
// error stops the scan and surfaces that error; a false return from the
// context stops it with ctx.Err().
//
// io.EOF from the reader is the normal termination and returns nil.
func Scan(ctx context.Context, r io.Reader, logf Logger, fn func(json.RawMessage) error) error {
	dec := NewDecoder(logf)
	buf := make([]byte, readBufferSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			for _, payload := range dec.Feed(buf[:n]) {
				if ferr := fn(payload); ferr != nil {
					return ferr
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				for _, payload := range dec.Flush() {
					if ferr := fn(payload); ferr != nil {
						return ferr
					}
				}
				return nil
			}
			return err
		}
	}
}
