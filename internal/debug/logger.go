// Package debug provides opt-in debug logging using log/slog.
package debug

import (
	"log/slog"
	"os"
	"sync"
)

var (
	logger  *slog.Logger
	enabled bool
	mu      sync.RWMutex
)

func init() {
	Init(false)
}

// Init configures debug logging. When enable is false, records are
// discarded.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	level := slog.LevelDebug
	if !enable {
		level = slog.LevelError + 1
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Debug(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Error(msg, args...)
}

// Query logs one compiled statement with its binding count, keeping values
// out of the log line.
func Query(connection, sql string, bindings int) {
	Debug("executing query", "connection", connection, "sql", sql, "bindings", bindings)
}
