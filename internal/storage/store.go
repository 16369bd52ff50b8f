// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/morganforge/flap-tui/internal/flap"
	"github.com/morganforge/flap-tui/internal/model"
)

// ErrNotFound is returned when a conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Store handles conversation persistence.
type Store struct {
	db *sql.DB
}

// Meta is the listing view of a stored conversation.
type Meta struct {
	LocalID      string
	ServerID     string
	Title        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// Open opens (creating if needed) the conversation database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(initMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// SAVE
// =============================================================================

// Save upserts a conversation and replaces its messages in one transaction.
// Pending messages are skipped: only turns that reached a terminal status
// are worth keeping across restarts.
func (s *Store) Save(conv *model.Conversation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversations (local_id, server_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(local_id) DO UPDATE SET
			server_id = excluded.server_id,
			title = excluded.title,
			updated_at = excluded.updated_at`,
		conv.LocalID, conv.ServerID, conv.Title,
		conv.CreatedAt.Unix(), conv.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, conv.LocalID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (id, conversation_id, position, role, status,
			content, reasoning, provider, error_text, sources_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	pos := 0
	for _, m := range conv.Messages {
		if !m.Status.Terminal() {
			continue
		}
		sourcesJSON, err := json.Marshal(m.Sources)
		if err != nil {
			return fmt.Errorf("failed to marshal sources: %w", err)
		}
		if _, err := stmt.Exec(m.ID, conv.LocalID, pos, m.Role.String(), string(m.Status),
			m.Content, m.Reasoning, m.Provider, m.ErrorText, string(sourcesJSON),
			m.Timestamp.Unix()); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
		pos++
	}

	return tx.Commit()
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads a conversation and its messages by local id.
func (s *Store) Load(localID string) (*model.Conversation, error) {
	conv := &model.Conversation{LocalID: localID}

	var serverID sql.NullString
	var created, updated int64
	err := s.db.QueryRow(`
		SELECT server_id, title, created_at, updated_at
		FROM conversations WHERE local_id = ?`, localID).
		Scan(&serverID, &conv.Title, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	conv.ServerID = serverID.String
	conv.CreatedAt = time.Unix(created, 0)
	conv.UpdatedAt = time.Unix(updated, 0)

	rows, err := s.db.Query(`
		SELECT id, role, status, content, reasoning, provider, error_text, sources_json, created_at
		FROM messages WHERE conversation_id = ? ORDER BY position`, localID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m model.Message
		var role, status, sourcesJSON string
		var ts int64
		if err := rows.Scan(&m.ID, &role, &status, &m.Content, &m.Reasoning,
			&m.Provider, &m.ErrorText, &sourcesJSON, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = model.Role(role)
		m.Status = model.Status(status)
		m.Timestamp = time.Unix(ts, 0)
		if sourcesJSON != "" && sourcesJSON != "[]" {
			var sources []flap.Source
			if err := json.Unmarshal([]byte(sourcesJSON), &sources); err == nil {
				m.Sources = sources
			}
		}
		conv.Messages = append(conv.Messages, &m)
	}
	return conv, rows.Err()
}

// =============================================================================
// LIST / DELETE
// =============================================================================

// List returns conversation metadata, most recently updated first.
func (s *Store) List() ([]Meta, error) {
	rows, err := s.db.Query(`
		SELECT c.local_id, COALESCE(c.server_id, ''), c.title, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.local_id)
		FROM conversations c
		ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		var created, updated int64
		if err := rows.Scan(&m.LocalID, &m.ServerID, &m.Title, &created, &updated, &m.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		m.CreatedAt = time.Unix(created, 0)
		m.UpdatedAt = time.Unix(updated, 0)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Delete removes a conversation and its messages.
func (s *Store) Delete(localID string) error {
	res, err := s.db.Exec(`DELETE FROM conversations WHERE local_id = ?`, localID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
