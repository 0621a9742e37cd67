// ABOUTME: Tests for item identifiers and post record construction.
// ABOUTME: Covers numeric/string JSON encoding of ItemID and legacy history arrays.
package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestItemIDJSONEncoding(t *testing.T) {
	tests := []struct {
		name string
		id   ItemID
		want string
	}{
		{"integer", IntID(4211), `4211`},
		{"url", ItemID("https://riddleking.co.uk/the-man-in-the-lift/"), `"https://riddleking.co.uk/the-man-in-the-lift/"`},
		{"leading zero stays string", ItemID("007"), `"007"`},
		{"negative", ItemID("-3"), `-3`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.id)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal(%q) = %s, want %s", tt.id, data, tt.want)
			}
		})
	}
}

func TestItemIDDecodesLegacyHistory(t *testing.T) {
	var ids []ItemID
	if err := json.Unmarshal([]byte(`[12, 345, "https://example.com/a/"]`), &ids); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	if ids[0] != "12" || ids[1] != "345" || ids[2] != "https://example.com/a/" {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestItemIDRejectsGarbage(t *testing.T) {
	var id ItemID
	if err := json.Unmarshal([]byte(`{"id":1}`), &id); err == nil {
		t.Error("expected error decoding an object as ItemID")
	}
}

func TestNewPostRecord(t *testing.T) {
	at := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	rec := NewPostRecord(IntID(7), "1790000000000000000", at)

	if rec.ItemID != "7" {
		t.Errorf("ItemID = %q, want 7", rec.ItemID)
	}
	if rec.PostID != "1790000000000000000" {
		t.Errorf("PostID = %q", rec.PostID)
	}
	if !rec.Timestamp.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", rec.Timestamp, at)
	}
	if rec.CycleID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected generated cycle ID")
	}
}

func TestIDSet(t *testing.T) {
	set := IDSet([]ItemID{"1", "2", "2"})
	if len(set) != 2 {
		t.Errorf("expected 2 distinct ids, got %d", len(set))
	}
	if _, ok := set["2"]; !ok {
		t.Error("expected set to contain 2")
	}
}
