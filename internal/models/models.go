// ABOUTME: Core data models for riddles, posted-item identifiers, and post records.
// ABOUTME: ItemID keeps integer IDs numeric on the wire so old history files round-trip.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ItemID is an opaque identifier for an item within its source.
// WordPress sources produce integer IDs; feed sources produce link URLs.
type ItemID string

// IntID builds an ItemID from an integer source identifier.
func IntID(n int64) ItemID {
	return ItemID(strconv.FormatInt(n, 10))
}

// String returns the identifier as a plain string.
func (id ItemID) String() string {
	return string(id)
}

// isInteger reports whether the ID is a canonical base-10 integer.
func (id ItemID) isInteger() bool {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return false
	}
	return strconv.FormatInt(n, 10) == string(id)
}

// MarshalJSON encodes integer IDs as JSON numbers and everything else as strings.
func (id ItemID) MarshalJSON() ([]byte, error) {
	if id.isInteger() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty item id")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid item id %s: %w", string(data), err)
	}
	*id = ItemID(n.String())
	return nil
}

// Item is a selectable riddle.
type Item struct {
	ID        ItemID
	Text      string // decoded riddle prompt
	Reference string // URL-safe slug used to build the answer link
}

// PostRecord describes one successful publish. It is logged, never persisted.
type PostRecord struct {
	CycleID   uuid.UUID
	ItemID    ItemID
	PostID    string
	Timestamp time.Time
}

// NewPostRecord creates a post record with a generated cycle ID.
func NewPostRecord(itemID ItemID, postID string, at time.Time) *PostRecord {
	return &PostRecord{
		CycleID:   uuid.New(),
		ItemID:    itemID,
		PostID:    postID,
		Timestamp: at,
	}
}

// IDSet builds a membership set from a history sequence.
func IDSet(ids []ItemID) map[ItemID]struct{} {
	set := make(map[ItemID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
