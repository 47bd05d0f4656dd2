package slog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/codeharvest"
)

// Ensure LoggingFragmentWriter implements codeharvest.FragmentWriter.
var _ codeharvest.FragmentWriter = (*LoggingFragmentWriter)(nil)

// LoggingFragmentWriter wraps a FragmentWriter with debug logging.
type LoggingFragmentWriter struct {
	next   codeharvest.FragmentWriter
	logger *slog.Logger
}

// NewLoggingFragmentWriter creates a new LoggingFragmentWriter.
func NewLoggingFragmentWriter(next codeharvest.FragmentWriter, logger *slog.Logger) *LoggingFragmentWriter {
	return &LoggingFragmentWriter{next: next, logger: logger}
}

// WriteFragment delegates to the wrapped writer and logs the outcome.
func (w *LoggingFragmentWriter) WriteFragment(ctx context.Context, path string, frag *codeharvest.Fragment) (err error) {
	defer func(begin time.Time) {
		w.logger.Debug("write fragment",
			"path", path,
			"source", frag.SourceURL,
			"lines", strings.Count(frag.Text, "\n"),
			"bytes", len(frag.Text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WriteFragment(ctx, path, frag)
}
