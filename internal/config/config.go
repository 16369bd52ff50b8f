// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/flap-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete flap-tui configuration.
type Config struct {
	Version string `toml:"version"`

	Server  ServerConfig  `toml:"server"`
	Chat    ChatConfig    `toml:"chat"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
	Export  ExportConfig  `toml:"export"`
}

// ServerConfig contains Flap backend connection settings.
type ServerConfig struct {
	// BaseURL is the Flap backend root, e.g. https://flap.example.com
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds the non-streaming requests. Streams have no
	// deadline; a stalled stream ends when the server closes it.
	TimeoutSecs int `toml:"timeout_secs"`
}

// ChatConfig contains chat behavior settings.
type ChatConfig struct {
	// SearchDefault enables the search-augmented endpoint by default.
	SearchDefault bool `toml:"search_default"`
	// ShowReasoning expands the reasoning panel instead of collapsing it.
	ShowReasoning bool `toml:"show_reasoning"`
}

// StorageConfig contains local conversation persistence settings.
type StorageConfig struct {
	// Enabled controls whether conversations are saved locally.
	Enabled bool `toml:"enabled"`
	// Path is the sqlite database file (empty = ~/.flap/conversations.db).
	Path string `toml:"path"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme"`
	// SyntaxTheme is the chroma style for code blocks.
	SyntaxTheme string `toml:"syntax_theme"`
	// MouseEnabled turns on mouse wheel scrolling in the TUI.
	MouseEnabled bool `toml:"mouse_enabled"`
}

// ExportConfig contains transcript export settings.
type ExportConfig struct {
	Theme             string `toml:"theme"`
	IncludeMetadata   bool   `toml:"include_metadata"`
	IncludeTimestamps bool   `toml:"include_timestamps"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// CurrentVersion is the config schema version.
const CurrentVersion = "1.0"

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Server: ServerConfig{
			BaseURL:     "http://localhost:8000",
			TimeoutSecs: 30,
		},
		Chat: ChatConfig{
			SearchDefault: false,
			ShowReasoning: false,
		},
		Storage: StorageConfig{
			Enabled: true,
		},
		UI: UIConfig{
			Theme:        "dark",
			SyntaxTheme:  "monokai",
			MouseEnabled: true,
		},
		Export: ExportConfig{
			Theme:             "dark",
			IncludeMetadata:   true,
			IncludeTimestamps: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Path returns the config file location (~/.flap/config.toml).
func Path() (string, error) {
	dir, err := util.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DatabasePath resolves the sqlite path, falling back to the default
// location inside the data directory.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := util.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "conversations.db"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, applies environment overrides, and
// validates. A missing file is not an error: defaults apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies FLAP_* environment variables over the loaded
// values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("FLAP_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("FLAP_SEARCH"); v != "" {
		c.Chat.SearchDefault = isTruthy(v)
	}
	if v := os.Getenv("FLAP_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("FLAP_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("FLAP_NO_STORAGE"); v != "" && isTruthy(v) {
		c.Storage.Enabled = false
	}
}

// SetDefaults fills zero values left by a sparse config file.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = CurrentVersion
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8000"
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = 30
	}
	if c.UI.Theme == "" {
		c.UI.Theme = "dark"
	}
	if c.UI.SyntaxTheme == "" {
		c.UI.SyntaxTheme = "monokai"
	}
	if c.Export.Theme == "" {
		c.Export.Theme = c.UI.Theme
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.base_url %q is not a valid URL", c.Server.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url scheme %q must be http or https", u.Scheme)
	}
	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("ui.theme %q must be dark or light", c.UI.Theme)
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the config to its default location atomically.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the config as TOML to an explicit path.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# flap-tui configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	// 0600: the file may carry a private server URL.
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// Global returns the process-wide config, loading it on first use.
func Global() *Config {
	globalMu.RLock()
	if globalCfg != nil {
		defer globalMu.RUnlock()
		return globalCfg
	}
	globalMu.RUnlock()

	cfg, err := Load()
	if err != nil {
		cfg = Default()
	}
	SetGlobal(cfg)
	return cfg
}

// SetGlobal replaces the process-wide config.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	globalCfg = cfg
	globalMu.Unlock()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func isTruthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
}
