// ABOUTME: Structured logger construction for riddleking using charmbracelet/log.
// ABOUTME: Writes to stderr and, when configured, to a size-rotated log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger output.
type Options struct {
	Level      string // debug, info, warn, error
	File       string // optional log file path, rotated by size
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	JSON       bool
}

// Logger wraps a charmbracelet logger with the file handle it owns.
type Logger struct {
	*log.Logger
	closer io.Closer
}

// New builds a logger from the given options.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if opts.File != "" {
		lj := newLumberjack(opts)
		w = io.MultiWriter(os.Stderr, lj)
		closer = lj
	}

	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
	if opts.JSON {
		l.SetFormatter(log.JSONFormatter)
	}

	return &Logger{Logger: l, closer: closer}, nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *Logger {
	return &Logger{Logger: log.New(io.Discard)}
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// WithPrefix returns a child logger with a prefix. The child does not own the file.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{Logger: l.Logger.WithPrefix(prefix)}
}

// ParseLevel converts a string log level to a log.Level.
func ParseLevel(level string) (log.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}

func newLumberjack(opts Options) *lumberjack.Logger {
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 3
	}
	maxAge := opts.MaxAgeDays
	if maxAge <= 0 {
		maxAge = 28
	}

	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   true,
	}
}
