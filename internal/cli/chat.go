// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/morganforge/flap-tui/internal/config"
	"github.com/morganforge/flap-tui/internal/export"
	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/model"
	"github.com/morganforge/flap-tui/internal/session"
	"github.com/morganforge/flap-tui/internal/storage"
	"github.com/morganforge/flap-tui/internal/util"
)

// =============================================================================
// CHAT COMMAND (line-based REPL)
// =============================================================================

const historyFile = "history"

// chatSession holds REPL state between prompts.
type chatSession struct {
	cfg    *config.Config
	ctrl   *session.Controller
	store  *storage.Store
	line   *liner.State
	search bool
	reason bool
}

// HandleChat runs the line-based chat loop. It is the fallback for
// terminals where the full TUI is unwanted; same controller, plain
// stdin/stdout.
func HandleChat(args *ArgParser) {
	cfg := LoadConfig(args)

	s := &chatSession{
		cfg:    cfg,
		search: cfg.Chat.SearchDefault,
		reason: cfg.Chat.ShowReasoning,
	}
	if args.BoolFlag("search") {
		s.search = true
	}
	if args.BoolFlag("no-search") {
		s.search = false
	}

	client := NewClient(cfg)
	conv := model.NewConversation(util.Logf)
	s.ctrl = session.NewController(client, conv, session.Callbacks{
		OnSearchStatus: func(status, query string) {
			if status == flap.SearchStatusSearching {
				fmt.Println(dimStyle.Render("searching the web..."))
			}
		},
		OnConversationAdopted: func(serverID string) {
			util.Logf("chat: conversation %s", serverID)
		},
	}, util.Logf)

	if cfg.Storage.Enabled {
		if store, err := openStore(cfg); err != nil {
			printWarn("storage: %v (history will not be saved)", err)
		} else {
			s.store = store
			defer store.Close()
		}
	}

	s.line = liner.NewLiner()
	s.line.SetCtrlCAborts(true)
	defer s.close()
	s.loadHistory()

	fmt.Println(dimStyle.Render("Flap AI - /help for commands, /quit to exit"))
	s.loop()
}

func (s *chatSession) loop() {
	for {
		input, err := s.line.Prompt("you> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			// io.EOF on Ctrl+D.
			fmt.Println()
			return
		}

		input = util.NormalizeInput(input)
		if input == "" {
			continue
		}
		s.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if s.command(input) {
				return
			}
			continue
		}

		s.send(input)
	}
}

// command executes a slash command. Returns true to exit the loop.
func (s *chatSession) command(input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		fmt.Println(`Commands:
  /new               Start a new conversation
  /search            Toggle web search
  /reasoning         Toggle reasoning display
  /export [format]   Export this conversation (html, md, json)
  /history           List saved conversations
  /quit              Exit`)

	case "/history":
		s.history()

	case "/new", "/clear", "/c":
		s.persist()
		s.ctrl.Conversation().Reset()
		printOK("new conversation")

	case "/search":
		s.search = !s.search
		printOK("web search %s", onOff(s.search))

	case "/reasoning":
		s.reason = !s.reason
		printOK("reasoning %s", onOff(s.reason))

	case "/export":
		format := "html"
		if len(fields) > 1 {
			format = fields[1]
		}
		s.export(format)

	default:
		printWarn("unknown command %s (try /help)", fields[0])
	}
	return false
}

func (s *chatSession) send(text string) {
	msg, err := s.ctrl.Send(context.Background(), text, s.search)
	if err != nil {
		var backendErr *session.BackendError
		if errors.As(err, &backendErr) {
			printErr("server error: %s", backendErr.Message)
		} else {
			printErr("%v", err)
		}
		if msg == nil || msg.Text() == "" {
			return
		}
	}

	printAnswer(msg, false, s.reason)
	s.persist()
}

func (s *chatSession) export(format string) {
	conv := s.ctrl.Conversation()
	if conv.Len() == 0 {
		printWarn("nothing to export")
		return
	}
	opts := export.DefaultOptions()
	opts.Theme = s.cfg.Export.Theme
	opts.IncludeMetadata = s.cfg.Export.IncludeMetadata
	opts.IncludeTimestamps = s.cfg.Export.IncludeTimestamps

	path, err := exportAs(conv, format, opts)
	if err != nil {
		printErr("export: %v", err)
		return
	}
	printOK("exported to %s", path)
}

func (s *chatSession) history() {
	if s.store == nil {
		printWarn("storage is disabled")
		return
	}
	if err := listConversations(s.store); err != nil {
		printErr("storage: %v", err)
	}
}

func (s *chatSession) persist() {
	if s.store == nil || s.ctrl.Conversation().Len() == 0 {
		return
	}
	if err := s.store.Save(s.ctrl.Conversation()); err != nil {
		util.Logf("chat: persist failed: %v", err)
	}
}

func (s *chatSession) historyPath() string {
	dir, err := util.DataDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, historyFile)
}

func (s *chatSession) loadHistory() {
	path := s.historyPath()
	if path == "" {
		return
	}
	if f, err := os.Open(path); err == nil {
		s.line.ReadHistory(f)
		f.Close()
	}
}

func (s *chatSession) close() {
	if path := s.historyPath(); path != "" {
		if f, err := os.Create(path); err == nil {
			s.line.WriteHistory(f)
			f.Close()
		}
	}
	s.line.Close()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
