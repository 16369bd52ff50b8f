// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package flap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// sseHandler writes the given frames as an event stream, flushing each one
// so the client sees realistic chunk boundaries.
func sseHandler(t *testing.T, lines ...string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q, want text/event-stream", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}
		for _, line := range lines {
			w.Write([]byte(line + "\n"))
			flusher.Flush()
		}
	}
}

// =============================================================================
// STREAM TESTS
// =============================================================================

func TestStream_ContentDeltas(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		`data: {"provider":"grok"}`,
		`data: {"content":"Hi "}`,
		`data: {"content":"there"}`,
		`data: {"conversation_id":"abc123"}`,
		`data: {"done":true}`,
	))
	defer server.Close()

	client := NewClient(server.URL, StaticToken("tok"), nil)

	var content strings.Builder
	var provider, convID string
	sawDone := false

	err := client.Stream(context.Background(), EndpointStream, ChatRequest{Message: "hi"}, func(ev Event) error {
		content.WriteString(ev.Content)
		if ev.Provider != "" {
			provider = ev.Provider
		}
		if ev.ConversationID != "" {
			convID = ev.ConversationID
		}
		if ev.Done {
			sawDone = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	if got := content.String(); got != "Hi there" {
		t.Errorf("accumulated content = %q, want %q", got, "Hi there")
	}
	if provider != "grok" {
		t.Errorf("provider = %q, want grok", provider)
	}
	if convID != "abc123" {
		t.Errorf("conversation id = %q, want abc123", convID)
	}
	if !sawDone {
		t.Error("terminal done event was not delivered")
	}
}

func TestStream_MalformedFrameResilience(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		`data: {not json`,
		`data: {"content":"ok","done":true}`,
	))
	defer server.Close()

	client := NewClient(server.URL, StaticToken("tok"), nil)

	var content strings.Builder
	err := client.Stream(context.Background(), EndpointStream, ChatRequest{Message: "hi"}, func(ev Event) error {
		content.WriteString(ev.Content)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if got := content.String(); got != "ok" {
		t.Errorf("accumulated content = %q, want %q", got, "ok")
	}
}

func TestStream_StopsAfterTerminalEvent(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		`data: {"content":"a"}`,
		`data: {"done":true}`,
		`data: {"content":"after terminal"}`,
	))
	defer server.Close()

	client := NewClient(server.URL, StaticToken("tok"), nil)

	var events []Event
	err := client.Stream(context.Background(), EndpointStream, ChatRequest{Message: "hi"}, func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (nothing after terminal)", len(events))
	}
	if !events[1].Done {
		t.Error("second event should be the terminal done")
	}
}

func TestStream_ErrorEventIsDelivered(t *testing.T) {
	server := httptest.NewServer(sseHandler(t,
		`data: {"content":"partial"}`,
		`data: {"error":"model exploded"}`,
	))
	defer server.Close()

	client := NewClient(server.URL, StaticToken("tok"), nil)

	var last Event
	err := client.Stream(context.Background(), EndpointStream, ChatRequest{Message: "hi"}, func(ev Event) error {
		last = ev
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if last.Error != "model exploded" {
		t.Errorf("last event error = %q, want the protocol error", last.Error)
	}
}

func TestStream_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, StaticToken("tok"), nil)
	err := client.Stream(context.Background(), EndpointStream, ChatRequest{Message: "hi"}, func(Event) error {
		t.Fatal("no events expected on transport failure")
		return nil
	})

	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("Stream() error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", statusErr.StatusCode)
	}
}

func TestStream_NoToken(t *testing.T) {
	client := NewClient("http://unused", StaticToken(""), nil)
	err := client.Stream(context.Background(), EndpointStream, ChatRequest{Message: "hi"}, func(Event) error {
		return nil
	})
	if err != ErrAuthRequired {
		t.Errorf("Stream() error = %v, want ErrAuthRequired", err)
	}
}

func TestStream_SearchEndpointEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != EndpointStreamSearch {
			t.Errorf("path = %q, want %q", r.URL.Path, EndpointStreamSearch)
		}
		sseHandler(t,
			`data: {"search_status":"searching","search_query":"flap surgery"}`,
			`data: {"search_status":"complete","sources":[{"title":"A","url":"https://a.example"}]}`,
			`data: {"content":"answer"}`,
			`data: {"done":true}`,
		)(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, StaticToken("tok"), nil)

	var statuses []string
	var sources []Source
	err := client.Stream(context.Background(), EndpointStreamSearch, ChatRequest{Message: "hi"}, func(ev Event) error {
		if ev.SearchStatus != "" {
			statuses = append(statuses, ev.SearchStatus)
		}
		sources = append(sources, ev.Sources...)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	if len(statuses) != 2 || statuses[0] != SearchStatusSearching || statuses[1] != SearchStatusComplete {
		t.Errorf("search statuses = %v, want [searching complete]", statuses)
	}
	if len(sources) != 1 || sources[0].URL != "https://a.example" {
		t.Errorf("sources = %+v, want one source", sources)
	}
}
