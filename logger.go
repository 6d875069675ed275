package main

import (
	"io"
	"log/slog"
)

// newLogger returns a structured slog.Logger writing to w. format selects
// "text"; anything else produces JSON.
func newLogger(w io.Writer, level slog.Leveler, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
