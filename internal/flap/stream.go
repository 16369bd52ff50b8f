// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package flap

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/morganforge/flap-tui/internal/sse"
)

// =============================================================================
// STREAMING CHAT
// =============================================================================

// EventFunc receives decoded events in arrival order. Returning an error
// stops the stream and surfaces the error from Stream.
type EventFunc func(Event) error

// stopStream signals a clean early exit after a terminal event.
type stopStream struct{}

func (stopStream) Error() string { return "stream complete" }

// Stream performs a streaming chat exchange against the given endpoint
// (EndpointStream or EndpointStreamSearch) and invokes fn for every decoded
// event in arrival order.
//
// Stream returns nil on normal termination: either the transport closed or
// a terminal event (done/error) was delivered, after which no further
// frames are processed. Deciding what a terminal event means is the session
// controller's job; this layer only stops reading.
//
// Failure modes: ErrAuthRequired before the connection opens, StatusError
// for a non-2xx response, transport errors from the body read, or the
// error returned by fn.
func (c *Client) Stream(ctx context.Context, endpoint string, req ChatRequest, fn EventFunc) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	httpReq, err := c.newRequest(ctx, endpoint, req)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readStatusError(resp)
	}

	err = sse.Scan(ctx, resp.Body, c.logf, func(payload json.RawMessage) error {
		var ev Event
		if uerr := json.Unmarshal(payload, &ev); uerr != nil {
			// Valid JSON with an unusable shape: treat like a malformed
			// frame, skip without killing the stream.
			c.logf("flap: skipping undecodable frame: %v", uerr)
			return nil
		}

		if ferr := fn(ev); ferr != nil {
			return ferr
		}
		if ev.Terminal() {
			return stopStream{}
		}
		return nil
	})

	if _, stopped := err.(stopStream); stopped {
		return nil
	}
	return err
}
