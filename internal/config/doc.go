// Package config loads, normalizes, and validates JazzMate client configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// JAZZMATE_BACKEND_URL. The Config type centralizes every knob the CLI and the
// recommendation watcher need, so endpoints, polling budgets, and local data
// directories are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, trimmed URLs, and clear validation errors.
package config
