package main

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// newLogger returns an slog.Logger backed by a charmbracelet/log handler.
// Verbose output includes the library's debug records.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix: "fsop",
		Level:  level,
	})
	return slog.New(handler)
}
