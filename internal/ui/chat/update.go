// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/flap-tui/internal/export"
	"github.com/morganforge/flap-tui/internal/session"
	"github.com/morganforge/flap-tui/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

// refreshMsg signals that the in-flight assistant message changed.
type refreshMsg struct{}

// searchStatusMsg carries web-search progress from the controller.
type searchStatusMsg struct {
	status string
	query  string
}

// adoptedMsg fires when the server assigns a conversation id.
type adoptedMsg struct {
	serverID string
}

// exchangeDoneMsg fires when Send returns, success or not.
type exchangeDoneMsg struct {
	err error
}

// frameTickMsg drives throttled redraws while streaming.
type frameTickMsg time.Time

// exportDoneMsg reports the result of a background export.
type exportDoneMsg struct {
	path string
	err  error
}

// waitEvent relays the next bridge event into the Bubble Tea loop.
func waitEvent(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/defaultMaxFPS, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg.Width, msg.Height)

	case tea.KeyMsg:
		cmd, handled := m.handleKey(msg)
		if handled {
			return m, cmd
		}

	case refreshMsg:
		if m.buffer.Flush() {
			m.syncViewport()
		}
		return m, waitEvent(m.events)

	case searchStatusMsg:
		m.searchStatus = msg.status
		m.searchQuery = msg.query
		m.syncViewport()
		return m, waitEvent(m.events)

	case adoptedMsg:
		m.statusMsg = "conversation " + msg.serverID
		return m, waitEvent(m.events)

	case frameTickMsg:
		if !m.streaming {
			break
		}
		if m.buffer.Flush() {
			m.syncViewport()
		}
		return m, frameTick()

	case exchangeDoneMsg:
		m.finishExchange(msg.err)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.statusMsg = "export failed: " + msg.err.Error()
		} else {
			m.statusMsg = "exported to " + msg.path
		}
	}

	// Delegate everything else (spinner ticks, viewport scroll, typing).
	if cmd := m.spinner.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes chat-level bindings. Unhandled keys fall through to
// the input and viewport.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancelMgr.cancel()
		m.persist()
		return tea.Quit, true

	case key.Matches(msg, m.keys.Submit):
		return m.submit(), true

	case key.Matches(msg, m.keys.Cancel):
		if m.streaming {
			m.cancelMgr.cancel()
			m.statusMsg = "response cancelled"
		}
		return nil, true

	case key.Matches(msg, m.keys.ToggleSearch):
		m.searchEnabled = !m.searchEnabled
		return nil, true

	case key.Matches(msg, m.keys.ToggleReasoning):
		m.showReasoning = !m.showReasoning
		m.syncViewport()
		return nil, true

	case key.Matches(msg, m.keys.NewConversation):
		if !m.streaming {
			m.persist()
			m.controller.Conversation().Reset()
			m.searchStatus = ""
			m.lastError = ""
			m.statusMsg = "new conversation"
			m.syncViewport()
		}
		return nil, true

	case key.Matches(msg, m.keys.Export):
		return m.exportCmd(), true
	}
	return nil, false
}

// submit sends the typed message through the controller.
func (m *Model) submit() tea.Cmd {
	if m.streaming {
		return nil
	}
	text := util.NormalizeInput(m.input.Value())
	if text == "" {
		return nil
	}
	m.input.Reset()
	m.lastError = ""
	m.statusMsg = ""
	m.searchStatus = ""
	m.searchQuery = ""
	m.streaming = true
	m.buffer.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelMgr.set(cancel)

	ctrl := m.controller
	search := m.searchEnabled
	send := func() tea.Msg {
		defer cancel()
		_, err := ctrl.Send(ctx, text, search)
		return exchangeDoneMsg{err: err}
	}

	// The user turn is in the conversation once Send appends it; redraw
	// right away so it shows before the first token arrives.
	spin := m.spinner.Start("Thinking")
	m.syncViewport()

	return tea.Batch(send, spin, frameTick())
}

// finishExchange settles UI state after Send returns. The event channel
// reader armed in Init stays alive across exchanges; no re-arm here.
func (m *Model) finishExchange(err error) {
	m.streaming = false
	m.spinner.Stop()
	m.cancelMgr.cancel()
	m.buffer.ForceFlush()
	m.searchStatus = ""
	m.searchQuery = ""

	if err != nil {
		var backendErr *session.BackendError
		switch {
		case errors.As(err, &backendErr):
			m.lastError = backendErr.Message
		default:
			m.lastError = err.Error()
		}
	}

	m.persist()
	m.syncViewport()
}

// persist writes the conversation to local storage, if enabled.
func (m *Model) persist() {
	if m.store == nil {
		return
	}
	conv := m.controller.Conversation()
	if conv.Len() == 0 {
		return
	}
	if err := m.store.Save(conv); err != nil {
		util.Logf("chat: persist failed: %v", err)
	}
}

// exportCmd writes the conversation to an HTML file in the background.
func (m *Model) exportCmd() tea.Cmd {
	conv := m.controller.Conversation()
	if conv.Len() == 0 {
		m.statusMsg = "nothing to export"
		return nil
	}
	opts := export.DefaultOptions()
	opts.Theme = m.exportOpts.theme
	opts.IncludeMetadata = m.exportOpts.includeMetadata
	opts.IncludeTimestamps = m.exportOpts.includeTimestamps
	return func() tea.Msg {
		path, err := export.ExportToFile(conv, export.NewHTMLExporter(opts), opts)
		return exportDoneMsg{path: path, err: err}
	}
}

// syncViewport re-renders the scrollback and follows the tail.
func (m *Model) syncViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderConversation())
	if atBottom || m.streaming {
		m.viewport.GotoBottom()
	}
}

// handleResize recomputes layout for a new terminal size.
func (m *Model) handleResize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	// header(1) + input(3) + status(1) + spinner line(1)
	viewportHeight := height - 6
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = viewportHeight
	m.input.Width = width - 8

	m.ready = true
	m.syncViewport()
}
