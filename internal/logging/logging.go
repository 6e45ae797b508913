// Package logging builds the slog logger shared by the application. Log
// output goes to a file through bubbletea's LogToFile so it never corrupts
// the terminal UI.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

const prefix = "logview"

// Open returns a logger writing to path and a function closing the file.
// With an empty path the logger discards everything. debug lowers the level
// from info to debug.
func Open(path string, debug bool) (*slog.Logger, func(), error) {
	if path == "" {
		return Discard(), func() {}, nil
	}

	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, debug), func() { _ = f.Close() }, nil
}

// New returns a text logger writing to w.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
