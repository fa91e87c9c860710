// Package notifications pushes watch outcomes to the user's phone.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when notifications are disabled.
// Callers log delivery failures; a failed push never fails a watch.
package notifications
