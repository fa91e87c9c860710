// Package transport provides the JSON-over-HTTP request path shared by the
// JazzMate backend and AI service clients.
//
// Every request waits on a token-bucket limiter, runs through a circuit
// breaker, and has its failure classified with the markers from
// internal/services so callers can branch on errors.Is.
package transport
