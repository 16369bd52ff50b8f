// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/morganforge/flap-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// KeySize is the AES-256 key size (32 bytes).
	KeySize = 32
	// NonceSize is the AES-GCM nonce size (12 bytes / 96 bits).
	NonceSize = 12
	// SaltSize is the key-derivation salt size.
	SaltSize = 32
	// PBKDF2Iterations follows the OWASP 2023 recommendation for
	// PBKDF2-SHA-256 against modern brute-force hardware.
	PBKDF2Iterations = 600000

	vaultFile = "token.enc"
)

var (
	// ErrNoToken indicates no token has been stored yet.
	ErrNoToken = errors.New("no token stored: run 'flap auth login'")
	// ErrDecryptionFailed indicates a wrong passphrase or tampered vault.
	ErrDecryptionFailed = errors.New("decryption failed: wrong passphrase or corrupted vault")
)

// ZeroBytes zeros sensitive byte slices.
// SECURITY: Zero key material to prevent memory disclosure via crash dumps.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// TOKEN VAULT
// =============================================================================

// Vault stores the bearer token encrypted on disk.
// File format: salt(32) | nonce(12) | ciphertext+tag.
type Vault struct {
	path string
}

// NewVault creates a vault rooted in dir.
func NewVault(dir string) *Vault {
	return &Vault{path: filepath.Join(dir, vaultFile)}
}

// Path returns the vault file location.
func (v *Vault) Path() string {
	return v.path
}

// Exists reports whether a token has been stored.
func (v *Vault) Exists() bool {
	_, err := os.Stat(v.path)
	return err == nil
}

// Save encrypts the token under the passphrase and writes it atomically.
func (v *Vault) Save(passphrase, token string) error {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	key := deriveKey(passphrase, salt)
	defer ZeroBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(token), nil)

	blob := make([]byte, 0, SaltSize+NonceSize+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	if err := util.AtomicWriteFile(v.path, blob, 0600); err != nil {
		return fmt.Errorf("failed to write vault: %w", err)
	}
	return nil
}

// Load decrypts and returns the stored token.
func (v *Vault) Load(passphrase string) (string, error) {
	blob, err := os.ReadFile(v.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read vault: %w", err)
	}
	if len(blob) < SaltSize+NonceSize+1 {
		return "", ErrDecryptionFailed
	}

	salt := blob[:SaltSize]
	nonce := blob[SaltSize : SaltSize+NonceSize]
	sealed := blob[SaltSize+NonceSize:]

	key := deriveKey(passphrase, salt)
	defer ZeroBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	token, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(token), nil
}

// Delete removes the stored token.
func (v *Vault) Delete() error {
	err := os.Remove(v.path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNoToken
	}
	return err
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// deriveKey derives the AES key from a passphrase per NIST SP 800-132.
func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, PBKDF2Iterations, KeySize, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return gcm, nil
}
