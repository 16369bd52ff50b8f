// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/morganforge/flap-tui/internal/export"
	"github.com/morganforge/flap-tui/internal/model"
	"github.com/morganforge/flap-tui/internal/storage"
)

// =============================================================================
// EXPORT COMMAND
// =============================================================================

// HandleExport exports saved conversations.
//
//	flap export list               Show saved conversations
//	flap export html [id]          Export as HTML (latest when id omitted)
//	flap export md [id]            Export as Markdown
//	flap export json [id]          Export as JSON
func HandleExport(args *ArgParser) {
	cfg := LoadConfig(args)
	if !cfg.Storage.Enabled {
		Fatal("storage is disabled; nothing to export")
	}

	store, err := openStore(cfg)
	if err != nil {
		Fatal("storage: %v", err)
	}
	defer store.Close()

	sub := args.Subcommand()
	switch sub {
	case "", "list":
		if err := listConversations(store); err != nil {
			Fatal("storage: %v", err)
		}
		return
	case "html", "md", "markdown", "json":
	default:
		Fatal("unknown export format %q (html, md, json)", sub)
	}

	localID := ""
	if rest := args.Positional(); len(rest) > 0 {
		localID = rest[0]
	}
	conv, err := loadConversation(store, localID)
	if err != nil {
		Fatal("export: %v", err)
	}

	opts := export.DefaultOptions()
	opts.Theme = cfg.Export.Theme
	opts.IncludeMetadata = cfg.Export.IncludeMetadata
	opts.IncludeTimestamps = cfg.Export.IncludeTimestamps
	if dir := args.Flag("out", "o"); dir != "" {
		opts.OutputDir = dir
	}

	path, err := exportAs(conv, sub, opts)
	if err != nil {
		Fatal("export: %v", err)
	}
	printOK("exported to %s", path)
}

func listConversations(store *storage.Store) error {
	metas, err := store.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("no saved conversations")
		return nil
	}
	for _, m := range metas {
		title := m.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %s  %2d msgs  %s\n",
			m.LocalID, m.UpdatedAt.Format("2006-01-02 15:04"), m.MessageCount, title)
	}
	return nil
}

// loadConversation fetches by id, or the most recently updated one.
func loadConversation(store *storage.Store, localID string) (*model.Conversation, error) {
	if localID != "" {
		return store.Load(localID)
	}
	metas, err := store.List()
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, errors.New("no saved conversations")
	}
	return store.Load(metas[0].LocalID)
}

// exportAs maps a format name onto an exporter and writes the file.
func exportAs(conv *model.Conversation, format string, opts *export.Options) (string, error) {
	switch format {
	case "html":
		return export.ExportToFile(conv, export.NewHTMLExporter(opts), opts)
	case "md", "markdown":
		return export.ExportToFile(conv, export.NewMarkdownExporter(opts), opts)
	case "json":
		return export.ExportToFile(conv, export.NewJSONExporter(), opts)
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}
