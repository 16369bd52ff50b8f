// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/morganforge/flap-tui/internal/config"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// HandleConfig shows or initializes the configuration file.
//
//	flap config show     Print effective configuration
//	flap config init     Write a default config file
//	flap config path     Print the config file location
func HandleConfig(args *ArgParser) {
	path, err := config.Path()
	if err != nil {
		Fatal("config: %v", err)
	}

	switch args.Subcommand() {
	case "", "show":
		cfg, err := config.Load()
		if err != nil {
			Fatal("config: %v", err)
		}
		fmt.Println(dimStyle.Render("file: " + path))
		fmt.Printf("server.base_url     = %s\n", cfg.Server.BaseURL)
		fmt.Printf("server.timeout_secs = %d\n", cfg.Server.TimeoutSecs)
		fmt.Printf("chat.search_default = %t\n", cfg.Chat.SearchDefault)
		fmt.Printf("chat.show_reasoning = %t\n", cfg.Chat.ShowReasoning)
		fmt.Printf("storage.enabled     = %t\n", cfg.Storage.Enabled)
		if dbPath, err := cfg.DatabasePath(); err == nil {
			fmt.Printf("storage.path        = %s\n", dbPath)
		}
		fmt.Printf("ui.theme            = %s\n", cfg.UI.Theme)
		fmt.Printf("ui.syntax_theme     = %s\n", cfg.UI.SyntaxTheme)
		fmt.Printf("export.theme        = %s\n", cfg.Export.Theme)

	case "init":
		if _, err := os.Stat(path); err == nil && !args.BoolFlag("force") {
			Fatal("config: %s already exists (use --force to overwrite)", path)
		}
		if err := config.Save(config.Default()); err != nil {
			Fatal("config: %v", err)
		}
		printOK("wrote %s", path)

	case "path":
		fmt.Println(path)

	default:
		Fatal("unknown config subcommand %q (show, init, path)", args.Subcommand())
	}
}
