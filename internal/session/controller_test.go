// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/model"
)

// sseFrames writes SSE data frames with flushing, mimicking the backend.
func sseFrames(t *testing.T, w http.ResponseWriter, frames ...string) {
	t.Helper()
	w.Header().Set("Content-Type", "text/event-stream")
	flusher, ok := w.(http.Flusher)
	if !ok {
		t.Fatal("response writer does not support flushing")
	}
	for _, f := range frames {
		fmt.Fprintf(w, "data: %s\n\n", f)
		flusher.Flush()
	}
}

// recorder captures callback invocations in order.
type recorder struct {
	mu      sync.Mutex
	renders []string
	scrolls int
	adopted []string
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnRender: func(html string) {
			r.mu.Lock()
			r.renders = append(r.renders, html)
			r.mu.Unlock()
		},
		OnScroll: func() {
			r.mu.Lock()
			r.scrolls++
			r.mu.Unlock()
		},
		OnConversationAdopted: func(id string) {
			r.mu.Lock()
			r.adopted = append(r.adopted, id)
			r.mu.Unlock()
		},
	}
}

func newTestController(t *testing.T, handler http.HandlerFunc) (*Controller, *recorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := flap.NewClient(srv.URL, flap.StaticToken("test-token"), nil)
	conv := model.NewConversation(nil)
	rec := &recorder{}
	return NewController(client, conv, rec.callbacks(), nil), rec
}

func TestSend_EndToEnd(t *testing.T) {
	var gotReq flap.ChatRequest
	ctrl, rec := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != flap.EndpointStream {
			t.Errorf("path = %q, want %q", r.URL.Path, flap.EndpointStream)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		sseFrames(t, w,
			`{"provider":"grok"}`,
			`{"content":"Hi "}`,
			`{"content":"there"}`,
			`{"conversation_id":"abc123"}`,
			`{"done":true}`,
		)
	})

	msg, err := ctrl.Send(context.Background(), "hi", false)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotReq.Message != "hi" || len(gotReq.ConversationHistory) != 0 || gotReq.ConversationID != nil {
		t.Errorf("request = %+v, want fresh conversation", gotReq)
	}
	if msg.Text() != "Hi there" {
		t.Errorf("text = %q, want %q", msg.Text(), "Hi there")
	}
	if msg.Provider != "grok" {
		t.Errorf("provider = %q, want %q", msg.Provider, "grok")
	}
	if msg.Status != model.StatusComplete {
		t.Errorf("status = %q", msg.Status)
	}
	if ctrl.Conversation().ServerID != "abc123" {
		t.Errorf("conversation id = %q, want abc123", ctrl.Conversation().ServerID)
	}
	if len(rec.adopted) != 1 || rec.adopted[0] != "abc123" {
		t.Errorf("adopted callbacks = %v", rec.adopted)
	}
	if ctrl.Conversation().Len() != 2 {
		t.Errorf("history length = %d, want exactly one appended exchange", ctrl.Conversation().Len())
	}
	if ctrl.State() != StateCompleted {
		t.Errorf("state = %q", ctrl.State())
	}

	// One render per content delta plus the final one; scrolls track them.
	if len(rec.renders) < 3 {
		t.Errorf("renders = %d, want at least 3", len(rec.renders))
	}
	if rec.scrolls < 2 {
		t.Errorf("scrolls = %d, want at least 2", rec.scrolls)
	}
	last := rec.renders[len(rec.renders)-1]
	if !strings.Contains(last, "Hi there") {
		t.Errorf("final render missing text: %s", last)
	}
}

func TestSend_HistoryCarriesPriorTurnsOnly(t *testing.T) {
	call := 0
	var second flap.ChatRequest
	ctrl, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		call++
		if call == 2 {
			if err := json.NewDecoder(r.Body).Decode(&second); err != nil {
				t.Errorf("decoding request: %v", err)
			}
		}
		sseFrames(t, w,
			`{"conversation_id":"abc123"}`,
			`{"content":"answer"}`,
			`{"done":true}`,
		)
	})

	if _, err := ctrl.Send(context.Background(), "first", false); err != nil {
		t.Fatalf("first Send() error = %v", err)
	}
	if _, err := ctrl.Send(context.Background(), "second", false); err != nil {
		t.Fatalf("second Send() error = %v", err)
	}

	if second.Message != "second" {
		t.Errorf("message = %q", second.Message)
	}
	if second.ConversationID == nil || *second.ConversationID != "abc123" {
		t.Errorf("conversation_id = %v, want abc123", second.ConversationID)
	}
	want := []flap.Turn{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "answer"},
	}
	if len(second.ConversationHistory) != len(want) {
		t.Fatalf("history = %+v, want %+v", second.ConversationHistory, want)
	}
	for i := range want {
		if second.ConversationHistory[i] != want[i] {
			t.Errorf("history[%d] = %+v, want %+v", i, second.ConversationHistory[i], want[i])
		}
	}
}

func TestSend_ErrorFrameNoFallback(t *testing.T) {
	calls := make(chan string, 4)
	ctrl, rec := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		calls <- r.URL.Path
		sseFrames(t, w,
			`{"content":"partial "}`,
			`{"error":"model overloaded"}`,
		)
	})

	msg, err := ctrl.Send(context.Background(), "hi", false)
	var be *BackendError
	if !errors.As(err, &be) || be.Message != "model overloaded" {
		t.Fatalf("Send() error = %v, want BackendError", err)
	}
	if msg.Status != model.StatusFailed {
		t.Errorf("status = %q", msg.Status)
	}
	if msg.Content != "partial " {
		t.Errorf("partial content lost: %q", msg.Content)
	}
	if len(calls) != 1 {
		t.Errorf("backend called %d times, want 1 (no fallback)", len(calls))
	}
	if ctrl.State() != StateFailed {
		t.Errorf("state = %q", ctrl.State())
	}
	last := rec.renders[len(rec.renders)-1]
	if !strings.Contains(last, "model overloaded") {
		t.Errorf("error not surfaced in render: %s", last)
	}
}

func TestSend_TransportFailureFallsBack(t *testing.T) {
	ctrl, rec := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case flap.EndpointStream:
			http.Error(w, `{"detail":"bad gateway"}`, http.StatusBadGateway)
		case flap.EndpointChat:
			json.NewEncoder(w).Encode(flap.ChatResponse{
				Response:       "fallback answer",
				Provider:       "grok",
				Success:        true,
				ConversationID: "abc123",
			})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	})

	msg, err := ctrl.Send(context.Background(), "hi", false)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if msg.Content != "fallback answer" || msg.Status != model.StatusComplete {
		t.Errorf("message = %+v", msg)
	}
	if ctrl.Conversation().ServerID != "abc123" {
		t.Errorf("fallback conversation id not adopted: %q", ctrl.Conversation().ServerID)
	}
	if len(rec.renders) == 0 || !strings.Contains(rec.renders[len(rec.renders)-1], "fallback answer") {
		t.Errorf("fallback answer not rendered")
	}
}

func TestSend_MidStreamDropNoFallbackAfterContent(t *testing.T) {
	calls := make(chan string, 4)
	ctrl, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		calls <- r.URL.Path
		// Content arrives, then the connection closes with no terminal frame.
		sseFrames(t, w, `{"content":"partial"}`)
	})

	msg, err := ctrl.Send(context.Background(), "hi", false)
	if !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("Send() error = %v, want ErrStreamClosed", err)
	}
	if msg.Status != model.StatusFailed || msg.Content != "partial" {
		t.Errorf("message = status %q content %q", msg.Status, msg.Content)
	}
	if len(calls) != 1 {
		t.Errorf("backend called %d times, want 1", len(calls))
	}
}

func TestSend_MalformedFramesSkipped(t *testing.T) {
	ctrl, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"content\":\"ok \"}\n")
		fmt.Fprint(w, "data: {not json\n")
		fmt.Fprint(w, "data: {\"content\":\"fine\"}\n")
		fmt.Fprint(w, "data: {\"done\":true}\n")
	})

	msg, err := ctrl.Send(context.Background(), "hi", false)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if msg.Text() != "ok fine" {
		t.Errorf("text = %q, want %q", msg.Text(), "ok fine")
	}
}

func TestSend_SearchStatusIndicator(t *testing.T) {
	ctrl, rec := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != flap.EndpointStreamSearch {
			t.Errorf("path = %q, want %q", r.URL.Path, flap.EndpointStreamSearch)
		}
		sseFrames(t, w,
			`{"search_status":"searching","search_query":"aspirin dosage"}`,
			`{"search_status":"complete","sources":[{"title":"Ref","url":"https://ref.example"}]}`,
			`{"content":"Answer."}`,
			`{"done":true}`,
		)
	})

	msg, err := ctrl.Send(context.Background(), "dosage?", true)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(msg.Sources) != 1 || msg.Sources[0].URL != "https://ref.example" {
		t.Errorf("sources = %+v", msg.Sources)
	}

	var sawSearching, sawComplete bool
	for _, r := range rec.renders {
		searching := strings.Contains(r, "Searching the web")
		complete := strings.Contains(r, "Search complete")
		if searching && complete {
			t.Errorf("render contains both indicator states (appended, not replaced): %s", r)
		}
		sawSearching = sawSearching || searching
		sawComplete = sawComplete || complete
	}
	if !sawSearching || !sawComplete {
		t.Errorf("indicator states missing: searching=%v complete=%v", sawSearching, sawComplete)
	}
	// The final render must show the terminal indicator, not the transient one.
	last := rec.renders[len(rec.renders)-1]
	if !strings.Contains(last, "Search complete") || strings.Contains(last, "Searching the web") {
		t.Errorf("final render indicator wrong: %s", last)
	}
}

func TestSend_GateRejectsConcurrentExchange(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	ctrl, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		sseFrames(t, w, `{"content":"working"}`)
		close(started)
		<-release
		sseFrames(t, w, `{"done":true}`)
	})

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Send(context.Background(), "first", false)
		done <- err
	}()

	<-started
	if _, err := ctrl.Send(context.Background(), "second", false); !errors.Is(err, ErrExchangeActive) {
		t.Errorf("concurrent Send() error = %v, want ErrExchangeActive", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first Send() error = %v", err)
	}
	if ctrl.Busy() {
		t.Error("controller still busy after exchange finished")
	}
}

func TestSend_AuthRequiredNoFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend should never be reached without a token")
	}))
	t.Cleanup(srv.Close)

	client := flap.NewClient(srv.URL, flap.StaticToken(""), nil)
	ctrl := NewController(client, model.NewConversation(nil), Callbacks{}, nil)

	_, err := ctrl.Send(context.Background(), "hi", false)
	if !errors.Is(err, flap.ErrAuthRequired) {
		t.Errorf("Send() error = %v, want ErrAuthRequired", err)
	}
}
