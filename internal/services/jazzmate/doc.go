// Package jazzmate implements the JazzMate backend REST client: user reviews
// and their recommendations, tracks, albums, and critic reviews.
//
// Requests go through internal/services/transport, so callers get rate
// limiting, a circuit breaker, and classified errors (services.ErrNotFound,
// services.ErrTransient, ...) without extra wiring.
package jazzmate
