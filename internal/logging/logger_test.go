// ABOUTME: Tests for logger construction and level parsing.
// ABOUTME: Verifies file output lands on disk and unknown levels are rejected.
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"", log.InfoLevel},
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	if _, err := ParseLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riddleking.log")

	l, err := New(Options{Level: "info", File: path})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	l.Info("posted riddle", "item_id", "42")
	if err := l.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "posted riddle") || !strings.Contains(string(data), "item_id=42") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("expected error for bad level")
	}
}

func TestDiscardClose(t *testing.T) {
	l := Discard()
	l.Warn("nobody hears this")
	if err := l.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
}
