// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// =============================================================================
// DEBUG LOG SINK
// =============================================================================

// The TUI owns the terminal, so diagnostics go to a log file instead of
// stderr. The logger is lazily opened on first use and shared process-wide.

var (
	logMu   sync.Mutex
	logger  *log.Logger
	logOpen bool
)

// DataDir returns the application data directory (~/.flap), creating it
// if needed.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".flap")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// Logf writes a formatted line to the debug log. Errors opening the log
// are swallowed: logging must never take the application down.
func Logf(format string, args ...any) {
	logMu.Lock()
	defer logMu.Unlock()

	if !logOpen {
		logOpen = true
		dir, err := DataDir()
		if err != nil {
			return
		}
		f, err := os.OpenFile(filepath.Join(dir, "flap.log"),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return
		}
		logger = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
	}
	if logger != nil {
		logger.Printf(format, args...)
	}
}
