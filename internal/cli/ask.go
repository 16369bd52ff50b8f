// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/glamour"

	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/model"
	"github.com/morganforge/flap-tui/internal/session"
	"github.com/morganforge/flap-tui/internal/util"
)

// =============================================================================
// ASK COMMAND
// =============================================================================

// HandleAsk answers a single question and exits. Output is rendered
// markdown unless --raw is set.
func HandleAsk(args *ArgParser) {
	question := args.Rest()
	if question == "" {
		Fatal("usage: flap ask <question>")
	}

	cfg := LoadConfig(args)
	search := cfg.Chat.SearchDefault
	if args.BoolFlag("search") {
		search = true
	}
	if args.BoolFlag("no-search") {
		search = false
	}

	client := NewClient(cfg)
	conv := model.NewConversation(util.Logf)
	ctrl := session.NewController(client, conv, session.Callbacks{
		OnSearchStatus: func(status, query string) {
			if status == flap.SearchStatusSearching && query != "" {
				fmt.Fprintln(os.Stderr, dimStyle.Render(fmt.Sprintf("searching the web for %q...", query)))
			}
		},
	}, util.Logf)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	msg, err := ctrl.Send(ctx, question, search)
	if err != nil {
		var backendErr *session.BackendError
		if errors.As(err, &backendErr) {
			Fatal("server error: %s", backendErr.Message)
		}
		Fatal("%v", err)
	}

	printAnswer(msg, args.BoolFlag("raw"), args.BoolFlag("reasoning") || cfg.Chat.ShowReasoning)
}

// printAnswer writes one assistant message to stdout.
func printAnswer(msg *model.Message, raw, showReasoning bool) {
	if showReasoning && msg.Reasoning != "" {
		fmt.Fprintln(os.Stderr, dimStyle.Render("--- reasoning ---"))
		fmt.Fprintln(os.Stderr, dimStyle.Render(msg.Reasoning))
		fmt.Fprintln(os.Stderr, dimStyle.Render("-----------------"))
	}

	text := msg.Text()
	if raw {
		fmt.Println(text)
	} else {
		fmt.Print(renderMarkdown(text))
	}

	if msg.Provider != "" {
		fmt.Fprintln(os.Stderr, dimStyle.Render("provider: "+msg.Provider))
	}
	for i, s := range msg.Sources {
		fmt.Fprintln(os.Stderr, dimStyle.Render(fmt.Sprintf("[%d] %s", i+1, s.URL)))
	}
}

// renderMarkdown renders for the terminal, falling back to plain text when
// the renderer cannot be built (dumb terminals, pipes).
func renderMarkdown(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return text + "\n"
	}
	out, err := r.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}
