// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/model"
	"github.com/morganforge/flap-tui/internal/render"
	"github.com/morganforge/flap-tui/internal/sse"
)

// =============================================================================
// EXCHANGE STATE
// =============================================================================

// State is the lifecycle state of one exchange.
type State string

const (
	StateIdle      State = "idle"
	StateOpening   State = "opening"
	StateStreaming State = "streaming"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

var (
	// ErrExchangeActive is returned by Send while another exchange is in
	// flight. The send control stays disabled until the active exchange
	// reaches a terminal state.
	ErrExchangeActive = errors.New("an exchange is already in flight")

	// ErrStreamClosed is the implicit failure used when the connection
	// closes without a done or error frame.
	ErrStreamClosed = errors.New("stream closed before a terminal event")
)

// BackendError is a failure the backend reported through an error frame.
// It is final: the backend answered, so the fallback path is not tried.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// =============================================================================
// CALLBACKS
// =============================================================================

// Callbacks connect the controller to the presentation layer. All callbacks
// are invoked synchronously from the event loop, in arrival order. Nil
// callbacks are skipped.
type Callbacks struct {
	// OnRender receives the full re-rendered HTML of the in-flight
	// assistant message. Called on every content delta and on every
	// search-status change, never batched.
	OnRender func(messageHTML string)

	// OnScroll fires after each content re-render so the view can follow
	// the growing text.
	OnScroll func()

	// OnSearchStatus fires when the backend reports web search progress.
	// The query is empty for the terminal "complete" status.
	OnSearchStatus func(status, query string)

	// OnConversationAdopted fires once per conversation, when the server
	// assigns its id, so the conversation list can refresh.
	OnConversationAdopted func(serverID string)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller runs chat exchanges for one conversation.
type Controller struct {
	client *flap.Client
	conv   *model.Conversation
	cb     Callbacks
	logf   sse.Logger

	mu    sync.Mutex
	busy  bool
	state State
}

// NewController creates a controller bound to a conversation. logf may be nil.
func NewController(client *flap.Client, conv *model.Conversation, cb Callbacks, logf sse.Logger) *Controller {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Controller{
		client: client,
		conv:   conv,
		cb:     cb,
		logf:   logf,
		state:  StateIdle,
	}
}

// State returns the state of the current or most recent exchange.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether an exchange is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Conversation returns the conversation this controller mutates.
func (c *Controller) Conversation() *model.Conversation {
	return c.conv
}

// =============================================================================
// SEND
// =============================================================================

// Send runs one full exchange: appends the user turn and a pending
// assistant message, streams the response into it, and returns the
// assistant message once it is terminal. With search enabled the request
// goes to the search-augmented endpoint, which additionally emits
// search-status and sources events.
//
// Send blocks until the exchange completes or fails. The returned message
// is always non-nil once the exchange was admitted; on failure it carries
// the partial content and the failure text.
func (c *Controller) Send(ctx context.Context, text string, search bool) (*model.Message, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrExchangeActive
	}
	c.busy = true
	c.state = StateOpening
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	// The request snapshot is taken before appending the new exchange so
	// conversation_history carries only prior turns.
	req := flap.ChatRequest{
		Message:             text,
		ConversationHistory: c.conv.History(),
		ConversationID:      c.conv.RequestID(),
	}

	assistant := c.conv.AppendPendingExchange(text)

	endpoint := flap.EndpointStream
	if search {
		endpoint = flap.EndpointStreamSearch
	}

	ex := &exchange{ctrl: c, msg: assistant}
	streamErr := c.client.Stream(ctx, endpoint, req, ex.handle)

	switch {
	case ex.done:
		c.setState(StateCompleted)
		return assistant, nil

	case ex.protocolErr != nil:
		// The backend answered with an explicit failure. Retrying the
		// synchronous endpoint is not assumed to help.
		assistant.Fail(ex.protocolErr.Message)
		c.rerender(assistant, ex.indicator)
		c.setState(StateFailed)
		return assistant, ex.protocolErr

	case streamErr != nil && !ex.sawContent:
		// Transport failed before any answer bytes: one shot at the
		// synchronous endpoint.
		c.logf("session: stream failed before content (%v), falling back", streamErr)
		return c.fallback(ctx, req, assistant, streamErr)

	case streamErr != nil:
		assistant.Fail(streamErr.Error())
		c.rerender(assistant, ex.indicator)
		c.setState(StateFailed)
		return assistant, streamErr

	default:
		// Clean EOF with no terminal frame.
		assistant.Fail(ErrStreamClosed.Error())
		c.rerender(assistant, ex.indicator)
		c.setState(StateFailed)
		return assistant, ErrStreamClosed
	}
}

// fallback re-issues the exchange against the synchronous endpoint and
// replaces the rendered content wholesale with the single final answer.
func (c *Controller) fallback(ctx context.Context, req flap.ChatRequest, assistant *model.Message, streamErr error) (*model.Message, error) {
	if errors.Is(streamErr, flap.ErrAuthRequired) || errors.Is(ctx.Err(), context.Canceled) {
		assistant.Fail(streamErr.Error())
		c.rerender(assistant, nil)
		c.setState(StateFailed)
		return assistant, streamErr
	}

	resp, err := c.client.Chat(ctx, req)
	if err != nil {
		assistant.Fail(fmt.Sprintf("request failed: %v", err))
		c.rerender(assistant, nil)
		c.setState(StateFailed)
		return assistant, fmt.Errorf("fallback after stream failure: %w (stream: %v)", err, streamErr)
	}

	assistant.CompleteWith(resp.Response, resp.Reasoning, resp.Provider)
	c.adoptConversationID(resp.ConversationID)
	c.rerender(assistant, nil)
	c.scroll()
	c.setState(StateCompleted)
	return assistant, nil
}

// =============================================================================
// EVENT DISPATCH
// =============================================================================

// exchange holds the per-exchange accumulation the controller tracks on
// top of the message itself.
type exchange struct {
	ctrl       *Controller
	msg        *model.Message
	indicator  *render.SearchIndicator
	sawContent bool
	done       bool

	protocolErr *BackendError
}

// handle dispatches one decoded event into the in-flight message.
func (ex *exchange) handle(ev flap.Event) error {
	c := ex.ctrl
	c.setState(StateStreaming)
	ex.msg.BeginStreaming()

	if ev.Error != "" {
		ex.protocolErr = &BackendError{Message: ev.Error}
		return nil
	}

	if ev.Provider != "" {
		ex.msg.SetProvider(ev.Provider)
	}

	if ev.Reasoning != "" {
		// Accumulated silently; the collapsed panel is attached once at
		// completion rather than reformatted per token.
		ex.msg.AppendReasoning(ev.Reasoning)
	}

	if ev.ConversationID != "" {
		c.adoptConversationID(ev.ConversationID)
	}

	switch ev.SearchStatus {
	case flap.SearchStatusSearching:
		ex.indicator = &render.SearchIndicator{Status: flap.SearchStatusSearching, Query: ev.SearchQuery}
		c.notifySearch(flap.SearchStatusSearching, ev.SearchQuery)
		c.rerender(ex.msg, ex.indicator)
	case flap.SearchStatusComplete:
		ex.indicator = &render.SearchIndicator{Status: flap.SearchStatusComplete}
		ex.msg.AddSources(ev.Sources)
		c.notifySearch(flap.SearchStatusComplete, "")
		c.rerender(ex.msg, ex.indicator)
	}

	if ev.Content != "" {
		ex.sawContent = true
		ex.msg.AppendContent(ev.Content)
		c.rerender(ex.msg, ex.indicator)
		c.scroll()
	}

	if ev.Done {
		ex.msg.AddSources(ev.Sources)
		ex.msg.Complete()
		ex.done = true
		c.rerender(ex.msg, ex.indicator)
		c.scroll()
	}

	return nil
}

// =============================================================================
// SIDE EFFECTS
// =============================================================================

func (c *Controller) adoptConversationID(id string) {
	if id == "" {
		return
	}
	already := c.conv.ServerID != ""
	c.conv.AdoptID(id)
	if !already && c.conv.ServerID == id && c.cb.OnConversationAdopted != nil {
		c.cb.OnConversationAdopted(id)
	}
}

func (c *Controller) rerender(m *model.Message, ind *render.SearchIndicator) {
	if c.cb.OnRender != nil {
		c.cb.OnRender(render.Message(m, ind))
	}
}

func (c *Controller) scroll() {
	if c.cb.OnScroll != nil {
		c.cb.OnScroll()
	}
}

func (c *Controller) notifySearch(status, query string) {
	if c.cb.OnSearchStatus != nil {
		c.cb.OnSearchStatus(status, query)
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	if s == StateStreaming && c.state != StateOpening && c.state != StateStreaming {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()
}
