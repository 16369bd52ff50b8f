// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/morganforge/flap-tui/internal/auth"
	"github.com/morganforge/flap-tui/internal/config"
	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/storage"
	"github.com/morganforge/flap-tui/internal/ui/styles"
	"github.com/morganforge/flap-tui/internal/util"
)

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

var (
	okStyle   = lipgloss.NewStyle().Foreground(styles.Emerald)
	warnStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	errStyle  = lipgloss.NewStyle().Foreground(styles.Rose)
	dimStyle  = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

func printOK(format string, args ...any) {
	fmt.Println(okStyle.Render(fmt.Sprintf(format, args...)))
}

func printWarn(format string, args ...any) {
	fmt.Println(warnStyle.Render(fmt.Sprintf(format, args...)))
}

func printErr(format string, args ...any) {
	fmt.Fprintln(os.Stderr, errStyle.Render(fmt.Sprintf(format, args...)))
}

// Fatal prints an error and exits non-zero.
func Fatal(format string, args ...any) {
	printErr(format, args...)
	os.Exit(1)
}

// =============================================================================
// INPUT HELPERS
// =============================================================================

// readLine reads one line from stdin with a visible prompt.
func readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	defer auth.ZeroBytes(b)
	return string(b), nil
}

// =============================================================================
// CLIENT CONSTRUCTION
// =============================================================================

// LoadConfig loads configuration with an optional --server override.
func LoadConfig(args *ArgParser) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		Fatal("config: %v", err)
	}
	if server := args.Flag("server", "s"); server != "" {
		cfg.Server.BaseURL = server
	}
	return cfg
}

// NewClient builds a flap client with the standard credential chain: the
// environment token first, then the encrypted vault (unlocked once,
// interactively).
func NewClient(cfg *config.Config) *flap.Client {
	client := flap.NewClient(cfg.Server.BaseURL, TokenChain(), util.Logf)
	return client.WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second)
}

// openStore resolves the database path and opens local storage.
func openStore(cfg *config.Config) (*storage.Store, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}

// TokenChain resolves the bearer token for requests. The vault is only
// unlocked when the environment provides nothing and a vault exists; a
// failed unlock degrades to anonymous requests rather than aborting.
func TokenChain() auth.Chain {
	chain := auth.Chain{auth.EnvProvider{}}

	if os.Getenv(auth.TokenEnvVar) != "" {
		return chain
	}

	dir, err := util.DataDir()
	if err != nil {
		return chain
	}
	vault := auth.NewVault(dir)
	if !vault.Exists() {
		return chain
	}

	if gate := auth.NewTOTPGate(dir); gate.Enabled() {
		code, err := readLine("One-time code: ")
		if err != nil || gate.Verify(code) != nil {
			printWarn("auth: invalid one-time code, continuing without a token")
			return chain
		}
	}

	pass, err := readPassword("Vault passphrase: ")
	if err != nil {
		return chain
	}
	token, err := vault.Load(pass)
	if err != nil {
		printWarn("auth: %v, continuing without a token", err)
		return chain
	}

	mem := &auth.MemoryProvider{}
	mem.Set(token)
	return append(chain, mem)
}
