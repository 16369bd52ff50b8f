// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages the Flap API bearer token.
//
// The token is opaque to the rest of the client: everything downstream
// pulls it through the flap.TokenProvider interface. At rest the token
// lives in an encrypted vault (AES-256-GCM, PBKDF2-SHA-256 key derivation
// from a user passphrase). The FLAP_TOKEN environment variable bypasses
// the vault for scripting and CI use.
//
// An optional TOTP gate adds a second factor in front of vault unlock.
package auth
