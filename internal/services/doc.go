// Package services defines shared utilities consumed by the JazzMate service
// clients and the recommendation watcher.
//
// Key responsibilities:
//   - Context helpers that stamp review IDs, watch session IDs, and correlation
//     identifiers for logging and request headers.
//   - Structured error markers plus the Wrap helper so HTTP failures can be
//     classified (not found vs transient vs unavailable) with errors.Is.
//
// Use these helpers when wiring new client calls so operational behaviour
// (error handling, observability, retries) stays uniform across the client.
package services
