// ABOUTME: JSON-file history store holding posted riddle IDs as a pretty-printed array.
// ABOUTME: Missing or corrupt files read as empty history; writes are atomic via temp+rename.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/2389-research/riddleking/internal/logging"
	"github.com/2389-research/riddleking/internal/models"
)

// JSONHistoryStore stores history in a single JSON file.
type JSONHistoryStore struct {
	path   string
	logger *logging.Logger
	mu     sync.Mutex
}

// NewJSONHistoryStore opens the history file at path, creating it as an empty
// array if it does not exist yet.
func NewJSONHistoryStore(path string, logger *logging.Logger) (*JSONHistoryStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history path is required")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	s := &JSONHistoryStore{path: path, logger: logger}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write([]models.ItemID{}); err != nil {
			return nil, fmt.Errorf("failed to initialize history file: %w", err)
		}
	}

	return s, nil
}

// Path returns the backing file path.
func (s *JSONHistoryStore) Path() string {
	return s.path
}

// Load returns the persisted history, or empty on a missing or unreadable file.
func (s *JSONHistoryStore) Load() []models.ItemID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Contains reports whether id has been posted.
func (s *JSONHistoryStore) Contains(id models.ItemID) bool {
	return containsID(s.Load(), id)
}

// Append adds id to the end of the history file.
func (s *JSONHistoryStore) Append(id models.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := append(s.load(), id)
	if err := s.write(ids); err != nil {
		return fmt.Errorf("%w: append %s: %v", ErrPersistence, id, err)
	}
	s.logger.Debug("Marked riddle as posted", "item_id", id, "history_size", len(ids))
	return nil
}

// Clear rewrites the history file as an empty array.
func (s *JSONHistoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write([]models.ItemID{}); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrPersistence, err)
	}
	return nil
}

// Close releases any resources held by the store.
func (s *JSONHistoryStore) Close() error {
	return nil
}

func (s *JSONHistoryStore) load() []models.ItemID {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Error reading posted riddles", "path", s.path, "err", err)
		}
		return []models.ItemID{}
	}

	var ids []models.ItemID
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.Warn("Posted riddles file is corrupt, treating as empty", "path", s.path, "err", err)
		return []models.ItemID{}
	}
	if ids == nil {
		ids = []models.ItemID{}
	}
	return ids
}

func (s *JSONHistoryStore) write(ids []models.ItemID) error {
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(s.path, data)
}

// atomicWrite writes data to a temp file in the target directory and renames
// it over path, so readers never observe a half-written file.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
