package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger returns a slog.Logger rendering through charmbracelet/log.
// Every record carries the run ID so interleaved runs can be told apart.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "codeharvest",
	})

	return slog.New(handler).With("run", uuid.NewString())
}
