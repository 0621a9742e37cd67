// ABOUTME: Interface definition for the posted-riddle history store.
// ABOUTME: Defines the load/contains/append/clear contract shared by JSON and SQLite backends.
package storage

import (
	"errors"
	"fmt"

	"github.com/2389-research/riddleking/internal/logging"
	"github.com/2389-research/riddleking/internal/models"
)

// ErrPersistence marks history read/write failures. Callers treat it as a warning.
var ErrPersistence = errors.New("history persistence failed")

// HistoryStore persists the identifiers of items that have already been posted.
// Implementations are the sole writer of their backing file or table.
type HistoryStore interface {
	// Load returns the persisted history. Missing or corrupt data yields an
	// empty sequence; the failure is logged, never returned.
	Load() []models.ItemID

	// Contains reports whether id is present in the persisted history.
	Contains(id models.ItemID) bool

	// Append durably adds one identifier to the end of the history.
	Append(id models.ItemID) error

	// Clear durably replaces the history with an empty sequence.
	Clear() error

	// Close releases any resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open creates the history store for the given backend.
func Open(backend, path string, logger *logging.Logger) (HistoryStore, error) {
	switch backend {
	case BackendJSON, "":
		s, err := NewJSONHistoryStore(path, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		s, err := NewSQLiteHistoryStore(path, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

func containsID(ids []models.ItemID, id models.ItemID) bool {
	for _, have := range ids {
		if have == id {
			return true
		}
	}
	return false
}
