// Package logging configures the process-wide slog logger.
package logging

import (
	"log/slog"
	"os"
)

// New returns a text logger on stderr. Verbose enables debug-level records.
func New(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
