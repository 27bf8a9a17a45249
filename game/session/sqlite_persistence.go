package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/mcp-training/platepush/game/engine"
	"github.com/wricardo/mcp-training/platepush/game/service"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id               TEXT PRIMARY KEY,
	config_id        TEXT NOT NULL,
	created_at       INTEGER NOT NULL,
	last_accessed_at INTEGER NOT NULL,
	move_history     TEXT NOT NULL,
	current_moves    TEXT NOT NULL
)`

// SQLitePersistence implements SessionPersistence with a single SQLite table
type SQLitePersistence struct {
	db            *sql.DB
	configManager service.ConfigManager
}

// NewSQLitePersistence opens (creating if needed) the database at path
func NewSQLitePersistence(path string, configManager service.ConfigManager) (*SQLitePersistence, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sessionsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &SQLitePersistence{db: db, configManager: configManager}, nil
}

// Close releases the database handle
func (sp *SQLitePersistence) Close() error {
	if sp == nil || sp.db == nil {
		return nil
	}
	return sp.db.Close()
}

// Save upserts a session row
func (sp *SQLitePersistence) Save(session *service.Session) error {
	data, err := snapshot(session, sp.configManager)
	if err != nil {
		return err
	}

	history, err := json.Marshal(nonNil(data.MoveHistory))
	if err != nil {
		return fmt.Errorf("failed to marshal move history: %w", err)
	}
	current, err := json.Marshal(nonNil(data.CurrentMoves))
	if err != nil {
		return fmt.Errorf("failed to marshal current moves: %w", err)
	}

	_, err = sp.db.Exec(
		`INSERT INTO sessions (id, config_id, created_at, last_accessed_at, move_history, current_moves)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    config_id = excluded.config_id,
		    last_accessed_at = excluded.last_accessed_at,
		    move_history = excluded.move_history,
		    current_moves = excluded.current_moves`,
		data.ID,
		data.ConfigName,
		data.CreatedAt.UnixNano(),
		data.LastAccessedAt.UnixNano(),
		string(history),
		string(current),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", data.ID, err)
	}
	return nil
}

// Load reads a session row and replays it
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	row := sp.db.QueryRow(
		`SELECT id, config_id, created_at, last_accessed_at, move_history, current_moves
		 FROM sessions WHERE id = ?`,
		id,
	)

	var data PersistedSessionData
	var createdAt, lastAccessedAt int64
	var history, current string
	if err := row.Scan(&data.ID, &data.ConfigName, &createdAt, &lastAccessedAt, &history, &current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	data.CreatedAt = time.Unix(0, createdAt)
	data.LastAccessedAt = time.Unix(0, lastAccessedAt)
	if err := json.Unmarshal([]byte(history), &data.MoveHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal move history: %w", err)
	}
	if err := json.Unmarshal([]byte(current), &data.CurrentMoves); err != nil {
		return nil, fmt.Errorf("failed to unmarshal current moves: %w", err)
	}

	return restore(&data, sp.configManager)
}

// Delete removes a session row
func (sp *SQLitePersistence) Delete(id string) error {
	res, err := sp.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.db.Query(`SELECT id FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var one int
	err := sp.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&one)
	return err == nil
}

func nonNil(entries []engine.MoveHistoryEntry) []engine.MoveHistoryEntry {
	if entries == nil {
		return []engine.MoveHistoryEntry{}
	}
	return entries
}
