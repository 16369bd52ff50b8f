// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"os"
	"sync"
)

// =============================================================================
// TOKEN PROVIDERS
// =============================================================================

// TokenEnvVar bypasses the vault when set, for scripting and CI.
const TokenEnvVar = "FLAP_TOKEN"

// EnvProvider reads the token from the environment on every call, so a
// cleared variable stops authenticating immediately.
type EnvProvider struct{}

// Token implements flap.TokenProvider.
func (EnvProvider) Token() string {
	return os.Getenv(TokenEnvVar)
}

// MemoryProvider holds a token unlocked from the vault for the lifetime
// of the process.
type MemoryProvider struct {
	mu    sync.RWMutex
	token string
}

// Token implements flap.TokenProvider.
func (p *MemoryProvider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// Set stores the unlocked token.
func (p *MemoryProvider) Set(token string) {
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
}

// Clear drops the token, e.g. on logout.
func (p *MemoryProvider) Clear() {
	p.Set("")
}

// Chain tries each provider in order and returns the first non-empty
// token. The environment always wins over the vault.
type Chain []interface{ Token() string }

// Token implements flap.TokenProvider.
func (c Chain) Token() string {
	for _, p := range c {
		if t := p.Token(); t != "" {
			return t
		}
	}
	return ""
}
