// Package logging assembles structured slog loggers and formatting helpers used
// across JazzMate commands and clients.
//
// It owns the configurable console/JSON handlers and exposes context-aware
// helpers so watcher and client code can tag log lines with review IDs, watch
// sessions, and correlation IDs. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging
