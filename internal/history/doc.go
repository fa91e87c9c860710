// Package history persists one row per `jazzmate watch` run in a local SQLite
// database so that failed or abandoned watches can be inspected afterwards.
//
// The store owns its schema (embedded schema.sql, versioned through
// PRAGMA user_version) and retries writes briefly when another process
// holds the database lock.
package history
