// flap - a terminal client for the Flap AI chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/flap-tui/internal/cli"
	"github.com/morganforge/flap-tui/internal/config"
	"github.com/morganforge/flap-tui/internal/storage"
	"github.com/morganforge/flap-tui/internal/ui/chat"
	"github.com/morganforge/flap-tui/internal/util"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdAuth:
		cli.HandleAuth(args)
	case cli.CmdExport:
		cli.HandleExport(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

func runTUI(args *cli.ArgParser) {
	cfg := cli.LoadConfig(args)
	config.SetGlobal(cfg)

	// The credential chain may prompt; resolve it before the alternate
	// screen takes over the terminal.
	client := cli.NewClient(cfg)

	var store *storage.Store
	if cfg.Storage.Enabled {
		dbPath, err := cfg.DatabasePath()
		if err == nil {
			store, err = storage.Open(dbPath)
		}
		if err != nil {
			util.Logf("main: storage unavailable: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	// Live-reload config edits while the TUI runs. Reloads only refresh
	// the global snapshot; the view picks changes up on its next launch.
	if path, err := config.Path(); err == nil {
		watcher, werr := config.NewWatcher(path,
			func(next *config.Config) {
				config.SetGlobal(next)
				util.Logf("main: config reloaded")
			},
			func(err error) {
				util.Logf("main: config reload failed: %v", err)
			},
		)
		if werr == nil {
			defer watcher.Close()
		}
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(chat.New(client, store, cfg), opts...)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "flap: %v\n", err)
		os.Exit(1)
	}
}
