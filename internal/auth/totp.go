// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pquerna/otp/totp"

	"github.com/morganforge/flap-tui/internal/util"
)

// =============================================================================
// TOTP GATE
// =============================================================================

// ErrInvalidCode indicates a TOTP code that did not verify.
var ErrInvalidCode = errors.New("invalid one-time code")

const totpSecretFile = "totp.secret"

// TOTPGate is an optional second factor in front of vault unlock. When
// enrolled, the stored secret must validate a current code before the
// passphrase prompt is even shown.
type TOTPGate struct {
	path string
}

// NewTOTPGate creates a gate rooted in dir.
func NewTOTPGate(dir string) *TOTPGate {
	return &TOTPGate{path: filepath.Join(dir, totpSecretFile)}
}

// Enabled reports whether a TOTP secret has been enrolled.
func (g *TOTPGate) Enabled() bool {
	_, err := os.Stat(g.path)
	return err == nil
}

// Enroll generates a new TOTP secret and stores it. Returns the secret
// and the otpauth:// provisioning URL for authenticator apps.
func (g *TOTPGate) Enroll(account string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "flap-tui",
		AccountName: account,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}
	if err := util.AtomicWriteFile(g.path, []byte(key.Secret()), 0600); err != nil {
		return "", "", fmt.Errorf("failed to store TOTP secret: %w", err)
	}
	return key.Secret(), key.URL(), nil
}

// Verify checks a code against the enrolled secret.
func (g *TOTPGate) Verify(code string) error {
	secret, err := os.ReadFile(g.path)
	if errors.Is(err, os.ErrNotExist) {
		// Not enrolled: the gate is open.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read TOTP secret: %w", err)
	}
	if !totp.Validate(strings.TrimSpace(code), strings.TrimSpace(string(secret))) {
		return ErrInvalidCode
	}
	return nil
}

// Disable removes the enrolled secret.
func (g *TOTPGate) Disable() error {
	err := os.Remove(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
