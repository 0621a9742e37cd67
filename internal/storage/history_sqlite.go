// ABOUTME: SQLite history store for deployments that keep bot state in a database file.
// ABOUTME: Uses the pure-Go modernc driver; rows are ordered by insertion sequence.
package storage

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/2389-research/riddleking/internal/logging"
	"github.com/2389-research/riddleking/internal/models"
)

// SQLiteHistoryStore stores history rows in a posted_items table.
type SQLiteHistoryStore struct {
	db     *sql.DB
	logger *logging.Logger
	mu     sync.Mutex
}

// NewSQLiteHistoryStore opens (or creates) the database at dbPath.
// ":memory:" is accepted for tests.
func NewSQLiteHistoryStore(dbPath string, logger *logging.Logger) (*SQLiteHistoryStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("history path is required")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	connStr := dbPath
	if dbPath == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single writer; one connection also keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteHistoryStore{db: db, logger: logger}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

func (s *SQLiteHistoryStore) createTables() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS posted_items (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id TEXT NOT NULL,
		posted_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_posted_items_item ON posted_items(item_id);
	`)
	return err
}

// Load returns all posted IDs in insertion order, or empty on a read failure.
func (s *SQLiteHistoryStore) Load() []models.ItemID {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT item_id FROM posted_items ORDER BY seq`)
	if err != nil {
		s.logger.Warn("Error reading posted riddles", "err", err)
		return []models.ItemID{}
	}
	defer func() { _ = rows.Close() }()

	ids := []models.ItemID{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			s.logger.Warn("Error scanning posted riddle row", "err", err)
			return []models.ItemID{}
		}
		ids = append(ids, models.ItemID(id))
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("Error iterating posted riddles", "err", err)
		return []models.ItemID{}
	}
	return ids
}

// Contains reports whether id has been posted.
func (s *SQLiteHistoryStore) Contains(id models.ItemID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM posted_items WHERE item_id = ?`, string(id)).Scan(&n)
	if err != nil {
		s.logger.Warn("Error checking posted riddle", "item_id", id, "err", err)
		return false
	}
	return n > 0
}

// Append inserts one row for id.
func (s *SQLiteHistoryStore) Append(id models.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`INSERT INTO posted_items (item_id, posted_at) VALUES (?, ?)`, string(id), time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: append %s: %v", ErrPersistence, id, err)
	}
	s.logger.Debug("Marked riddle as posted", "item_id", id)
	return nil
}

// Clear deletes every row.
func (s *SQLiteHistoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM posted_items`); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrPersistence, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}
