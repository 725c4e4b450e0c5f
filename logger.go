package huozi

import (
	"log/slog"

	"github.com/Icemic/huozi/internal/logging"
)

// SetLogger configures the logger used by huozi and all its sub-packages
// (the sub-packages that log, style and atlas, read it through the shared
// internal/logging package).
// By default huozi produces no log output. Call SetLogger to enable it.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore the default silent behavior).
//
// Only [slog.LevelWarn] is used, for non-fatal runtime warnings: unknown
// style tag, unparseable attribute value, missing glyph, and preload
// charset truncation.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.Get()
}
