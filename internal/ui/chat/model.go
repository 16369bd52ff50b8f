// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/flap-tui/internal/config"
	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/model"
	"github.com/morganforge/flap-tui/internal/session"
	"github.com/morganforge/flap-tui/internal/storage"
	"github.com/morganforge/flap-tui/internal/ui/components"
	"github.com/morganforge/flap-tui/internal/ui/styles"
	"github.com/morganforge/flap-tui/internal/util"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// eventChanSize bounds the controller-to-UI bridge. Refresh events beyond
// capacity are dropped; the frame tick repaints anything they would have.
const eventChanSize = 256

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme *styles.Theme
	keys  KeyMap

	width  int
	height int
	ready  bool

	controller *session.Controller
	store      *storage.Store

	viewport viewport.Model
	input    textinput.Model
	spinner  components.Spinner

	// Streaming bridge. The controller runs in a command goroutine and
	// posts into events; buffer throttles the resulting redraws.
	events    chan tea.Msg
	buffer    *StreamingBuffer
	cancelMgr *cancelManager
	streaming bool

	searchEnabled bool
	showReasoning bool
	syntaxTheme   string
	exportOpts    exportSettings

	searchStatus string
	searchQuery  string
	statusMsg    string
	lastError    string
}

// exportSettings carries the export settings the view needs from config.
type exportSettings struct {
	theme             string
	includeMetadata   bool
	includeTimestamps bool
}

// New builds the chat view and its session controller.
func New(client *flap.Client, store *storage.Store, cfg *config.Config) *Model {
	m := &Model{
		theme:         styles.NewTheme(),
		keys:          DefaultKeyMap(),
		store:         store,
		events:        make(chan tea.Msg, eventChanSize),
		buffer:        NewStreamingBuffer(),
		cancelMgr:     newCancelManager(),
		spinner:       components.NewSpinner(),
		searchEnabled: cfg.Chat.SearchDefault,
		showReasoning: cfg.Chat.ShowReasoning,
		syntaxTheme:   cfg.UI.SyntaxTheme,
		exportOpts: exportSettings{
			theme:             cfg.Export.Theme,
			includeMetadata:   cfg.Export.IncludeMetadata,
			includeTimestamps: cfg.Export.IncludeTimestamps,
		},
	}

	conv := model.NewConversation(util.Logf)
	m.controller = session.NewController(client, conv, session.Callbacks{
		OnRender: func(string) {
			m.buffer.Mark()
			m.post(refreshMsg{})
		},
		OnSearchStatus: func(status, query string) {
			m.post(searchStatusMsg{status: status, query: query})
		},
		OnConversationAdopted: func(serverID string) {
			m.post(adoptedMsg{serverID: serverID})
		},
	}, util.Logf)

	m.input = textinput.New()
	m.input.Placeholder = "Ask Flap AI anything..."
	m.input.CharLimit = 4000
	m.input.Focus()

	m.viewport = viewport.New(80, 20)

	return m
}

// post delivers a bridge event without ever blocking the stream goroutine.
func (m *Model) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

// Init starts event delivery.
func (m *Model) Init() tea.Cmd {
	return waitEvent(m.events)
}
