// Package logging configures the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
)

// Setup installs the default slog logger writing to stderr. Verbose enables
// debug records, quiet drops everything below errors; quiet wins when both
// are set.
func Setup(verbose, quiet bool) {
	level := slog.LevelInfo

	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	slog.SetDefault(slog.New(handler))
}
