// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the top-level CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdAuth
	CmdExport
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

const usageText = `flap - terminal client for the Flap AI chat service

Usage:
  flap                       Launch the interactive TUI
  flap ask <question>        Ask a one-shot question
  flap chat                  Start a line-based chat session
  flap auth <subcommand>     Manage credentials (login, logout, status, totp)
  flap export <subcommand>   Export saved conversations (list, html, md, json)
  flap status                Check server health
  flap config <subcommand>   Show or initialize configuration
  flap version               Print version information
  flap help                  Show this help

Common flags:
  --search / --no-search     Enable or disable web search for this request
  --reasoning                Show the model's reasoning
  --server URL               Override the server URL
  --raw                      Print plain text instead of rendered markdown

Environment:
  FLAP_TOKEN                 Bearer token (overrides the vault)
  FLAP_SERVER_URL            Server URL override
`

// Parse maps os.Args onto a command and its argument parser.
func Parse() (Command, *ArgParser) {
	if len(os.Args) < 2 {
		return CmdTUI, NewArgParser(nil)
	}

	cmd := os.Args[1]
	rest := NewArgParser(os.Args[2:])

	switch cmd {
	case "ask":
		return CmdAsk, rest
	case "chat":
		return CmdChat, rest
	case "auth":
		return CmdAuth, rest
	case "export":
		return CmdExport, rest
	case "status":
		return CmdStatus, rest
	case "config":
		return CmdConfig, rest
	case "version", "--version", "-v":
		return CmdVersion, rest
	case "help", "--help", "-h":
		return CmdHelp, rest
	default:
		// Flags before any subcommand still launch the TUI.
		return CmdTUI, NewArgParser(os.Args[1:])
	}
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}

// HandleVersion prints build information.
func HandleVersion() {
	fmt.Printf("flap %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
