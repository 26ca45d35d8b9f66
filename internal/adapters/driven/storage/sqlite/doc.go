// Package sqlite provides the default SQLite-based implementation of the
// DocumentStore and ChatStore ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both stores share a single database:
//
//   - DocumentStore: Documents and their chunk embeddings
//   - ChatStore: Chat sessions and the message log
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory and embedded at compile time.
//
// # Data Location
//
// By default, the database is stored at ~/.procdocs/data/procdocs.db
//
// # Thread Safety
//
// All operations are thread-safe. Transactions take the write lock up front
// and wait on busy_timeout, so concurrent writers queue instead of failing.
package sqlite
