// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for flap-tui.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. Precedence, highest first:
//   - FLAP_* environment variables
//   - ~/.flap/config.toml
//   - Built-in defaults
//
// A Watcher can reload the file on change so a running TUI picks up edits
// without a restart.
package config
