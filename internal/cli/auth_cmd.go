// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/morganforge/flap-tui/internal/auth"
	"github.com/morganforge/flap-tui/internal/util"
)

// =============================================================================
// AUTH COMMAND
// =============================================================================

// HandleAuth manages the encrypted token vault and the optional TOTP gate.
//
//	flap auth login            Store a bearer token (encrypted at rest)
//	flap auth logout           Remove the stored token
//	flap auth status           Show credential sources
//	flap auth totp enroll      Require a one-time code to unlock the vault
//	flap auth totp disable     Remove the one-time code requirement
func HandleAuth(args *ArgParser) {
	dir, err := util.DataDir()
	if err != nil {
		Fatal("auth: %v", err)
	}
	vault := auth.NewVault(dir)
	gate := auth.NewTOTPGate(dir)

	switch args.Subcommand() {
	case "login":
		authLogin(vault)
	case "logout":
		authLogout(vault)
	case "", "status":
		authStatus(vault, gate)
	case "totp":
		authTOTP(gate, args)
	default:
		Fatal("unknown auth subcommand %q (login, logout, status, totp)", args.Subcommand())
	}
}

func authLogin(vault *auth.Vault) {
	token, err := readPassword("Bearer token: ")
	if err != nil {
		Fatal("auth: %v", err)
	}
	if token == "" {
		Fatal("auth: empty token")
	}

	pass, err := readPassword("New vault passphrase: ")
	if err != nil {
		Fatal("auth: %v", err)
	}
	confirm, err := readPassword("Confirm passphrase: ")
	if err != nil {
		Fatal("auth: %v", err)
	}
	if pass != confirm {
		Fatal("auth: passphrases do not match")
	}
	if len(pass) < 8 {
		Fatal("auth: passphrase must be at least 8 characters")
	}

	if err := vault.Save(pass, token); err != nil {
		Fatal("auth: %v", err)
	}
	printOK("token stored in %s", vault.Path())
}

func authLogout(vault *auth.Vault) {
	if !vault.Exists() {
		printWarn("no stored token")
		return
	}
	if err := vault.Delete(); err != nil {
		Fatal("auth: %v", err)
	}
	printOK("token removed")
}

func authStatus(vault *auth.Vault, gate *auth.TOTPGate) {
	if os.Getenv(auth.TokenEnvVar) != "" {
		printOK("%s is set (takes precedence over the vault)", auth.TokenEnvVar)
	} else {
		fmt.Println(dimStyle.Render(auth.TokenEnvVar + " is not set"))
	}
	if vault.Exists() {
		printOK("vault: %s", vault.Path())
	} else {
		fmt.Println(dimStyle.Render("vault: none (run 'flap auth login')"))
	}
	if gate.Enabled() {
		printOK("totp: enabled")
	} else {
		fmt.Println(dimStyle.Render("totp: disabled"))
	}
}

func authTOTP(gate *auth.TOTPGate, args *ArgParser) {
	sub := ""
	if rest := args.Positional(); len(rest) > 0 {
		sub = rest[0]
	}
	switch sub {
	case "enroll":
		account := args.Flag("account")
		if account == "" {
			account = "flap"
		}
		secret, url, err := gate.Enroll(account)
		if err != nil {
			Fatal("auth: %v", err)
		}
		printOK("totp enrolled")
		fmt.Println("secret: " + secret)
		fmt.Println("url:    " + url)

		code, err := readLine("Verify with a code from your authenticator: ")
		if err != nil || gate.Verify(code) != nil {
			printWarn("verification failed; run 'flap auth totp disable' to start over")
			return
		}
		printOK("verified")

	case "disable":
		if err := gate.Disable(); err != nil {
			Fatal("auth: %v", err)
		}
		printOK("totp disabled")

	default:
		Fatal("unknown totp subcommand %q (enroll, disable)", sub)
	}
}
